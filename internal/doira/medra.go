package doira

import (
	"context"

	"doitip/internal/identifier"
)

const (
	medraPublisherNote = "Publisher info not available for mEDRA"

	// mEDRA may answer with XML when it has no JSON rendering of a record.
	medraAccept = "application/json,q=1.0; text/xml,q=0.9"
)

// medraAgency talks to https://api.medra.org/. mEDRA publishes no prefix
// listing.
type medraAgency struct {
	base
}

func (a *medraAgency) Prefixes(context.Context) Result {
	return unsupported(a.name, "prefixes")
}

func (a *medraAgency) PublisherInfo(context.Context, identifier.Identifier) Result {
	return Note{Note: medraPublisherNote}
}

func (a *medraAgency) Metadata(ctx context.Context, id identifier.Identifier) Result {
	u, failed := metadataURL(a.client.endpoints.MEDRAAPI, "metadata", id)
	if failed != nil {
		return failed
	}
	return a.client.fetch(ctx, "medra metadata", u, medraAccept, nil)
}

func (a *medraAgency) Info(ctx context.Context, id identifier.Identifier) InfoResult {
	return info(ctx, a, id)
}
