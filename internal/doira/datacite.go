package doira

import (
	"context"

	"doitip/internal/identifier"
)

const datacitePublisherNote = "Datacite publisher info is in metadata record."

type dataciteAgency struct {
	base
}

// Prefixes: https://support.datacite.org/reference/get_prefixes
func (a *dataciteAgency) Prefixes(ctx context.Context) Result {
	return a.client.fetch(ctx, "datacite prefixes", a.client.endpoints.DataCiteAPI+"/prefixes", acceptJSON, nil)
}

func (a *dataciteAgency) Providers(ctx context.Context) Result {
	return a.client.fetch(ctx, "datacite providers", a.client.endpoints.DataCiteAPI+"/providers", acceptJSON, nil)
}

func (a *dataciteAgency) PublisherInfo(context.Context, identifier.Identifier) Result {
	return Note{Note: datacitePublisherNote}
}

// Metadata: https://support.datacite.org/reference/get_dois-id
func (a *dataciteAgency) Metadata(ctx context.Context, id identifier.Identifier) Result {
	u, failed := metadataURL(a.client.endpoints.DataCiteAPI, "dois", id)
	if failed != nil {
		return failed
	}
	return a.client.fetch(ctx, "datacite metadata", u, acceptJSON, nil)
}

func (a *dataciteAgency) Info(ctx context.Context, id identifier.Identifier) InfoResult {
	return info(ctx, a, id)
}
