// Package doira routes DOIs to the Registration Agency (RA) that governs them
// and queries each RA's metadata API.
//
// Usage:
//
//	client := doira.NewClient(doira.WithTimeout(10*time.Second))
//	router := doira.NewRouter(client)
//	ra, err := router.DOIRA(ctx, id)
//	info := ra.Info(ctx, id)
//
// Every adapter call returns a Result: the decoded JSON document on success,
// or a Failure, Note or Unsupported payload. Adapter calls never return
// errors; only routing (UnknownRegistrar) and identifier validation are fatal.
package doira
