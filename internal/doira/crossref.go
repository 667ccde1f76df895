package doira

import (
	"context"
	"net/url"

	"doitip/internal/identifier"
)

// crossrefAgency talks to the Crossref prefix-publisher service and the
// Crossref REST API.
type crossrefAgency struct {
	base
}

func (a *crossrefAgency) prefixPublisherURL() string {
	return a.client.endpoints.Crossref + "/getPrefixPublisher/"
}

func (a *crossrefAgency) Prefixes(ctx context.Context) Result {
	q := url.Values{"prefix": {"all"}}
	return a.client.fetch(ctx, "crossref prefixes", a.prefixPublisherURL(), acceptJSON, q)
}

// PublisherInfo looks the curator up in the prefix-publisher service.
// https://crossref.gitlab.io/knowledge_base/docs/services/get-prefix-publisher/
func (a *crossrefAgency) PublisherInfo(ctx context.Context, id identifier.Identifier) Result {
	if _, err := id.DOIString(); err != nil {
		return Failure{Message: err.Error()}
	}
	q := url.Values{"prefix": {id.Curator}}
	return a.client.fetch(ctx, "crossref publisher info", a.prefixPublisherURL(), acceptJSON, q)
}

// Metadata fetches the work record: https://api.crossref.org/swagger-ui/index.html#/Works
func (a *crossrefAgency) Metadata(ctx context.Context, id identifier.Identifier) Result {
	u, failed := metadataURL(a.client.endpoints.CrossrefAPI, "works", id)
	if failed != nil {
		return failed
	}
	return a.client.fetch(ctx, "crossref metadata", u, acceptJSON, nil)
}

func (a *crossrefAgency) Info(ctx context.Context, id identifier.Identifier) InfoResult {
	return info(ctx, a, id)
}
