package doira

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"doitip/internal/identifier"
)

// Kind enumerates the registration agencies this package has adapters for.
type Kind int

const (
	Crossref Kind = iota + 1
	DataCite
	MEDRA
)

// Kinds returns every supported agency in listing order.
func Kinds() []Kind { return []Kind{Crossref, DataCite, MEDRA} }

// Key is the lowercase name the DOI service reports for the agency.
func (k Kind) Key() string {
	switch k {
	case Crossref:
		return "crossref"
	case DataCite:
		return "datacite"
	case MEDRA:
		return "medra"
	default:
		return ""
	}
}

// String returns the display name.
func (k Kind) String() string {
	switch k {
	case Crossref:
		return "Crossref"
	case DataCite:
		return "DataCite"
	case MEDRA:
		return "mEDRA"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// kindsByKey is the name table every lookup goes through. It is built once
// and never modified.
var kindsByKey = func() map[string]Kind {
	m := make(map[string]Kind, len(Kinds()))
	for _, k := range Kinds() {
		m[k.Key()] = k
	}
	return m
}()

// ParseKind maps an RA name to its Kind, ignoring case and surrounding space.
func ParseKind(name string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	k, ok := kindsByKey[key]
	if !ok {
		return 0, &UnknownRegistrarError{Name: key}
	}
	return k, nil
}

// New builds the adapter for k on top of c.
func (k Kind) New(c *Client) (Agency, error) {
	b := base{name: k.String(), kind: k, client: c}
	switch k {
	case Crossref:
		return &crossrefAgency{base: b}, nil
	case DataCite:
		return &dataciteAgency{base: b}, nil
	case MEDRA:
		return &medraAgency{base: b}, nil
	default:
		return nil, &UnknownRegistrarError{Name: k.Key()}
	}
}

// Agency is the capability set every registration agency adapter implements.
// None of the methods return errors: failures are reported as Result payloads.
type Agency interface {
	Name() string
	Kind() Kind
	// Prefixes lists every prefix claimed by the agency.
	Prefixes(ctx context.Context) Result
	// Providers lists the member organisations of the agency.
	Providers(ctx context.Context) Result
	HandleInfo(ctx context.Context, id identifier.Identifier) Result
	PublisherInfo(ctx context.Context, id identifier.Identifier) Result
	Metadata(ctx context.Context, id identifier.Identifier) Result
	// Info runs HandleInfo, PublisherInfo and Metadata concurrently.
	Info(ctx context.Context, id identifier.Identifier) InfoResult
}

// InfoResult assembles the three lookups of Agency.Info. Each slot holds its
// own normalized result.
type InfoResult struct {
	Handle   Result `json:"handle" yaml:"handle"`
	Prefix   Result `json:"prefix" yaml:"prefix"`
	Metadata Result `json:"metadata" yaml:"metadata"`
}

// base carries what the variants share: the name and the handle lookup.
type base struct {
	name   string
	kind   Kind
	client *Client
}

func (b *base) Name() string   { return b.name }
func (b *base) Kind() Kind     { return b.kind }
func (b *base) String() string { return b.name }

func (b *base) Providers(context.Context) Result {
	return unsupported(b.name, "providers")
}

// HandleInfo queries the DOI handle-resolution API, which is not RA specific.
func (b *base) HandleInfo(ctx context.Context, id identifier.Identifier) Result {
	doi, err := id.DOIString()
	if err != nil {
		return Failure{Message: err.Error()}
	}
	return b.client.fetch(ctx, "handle info", b.client.handleURL(doi), acceptJSON, nil)
}

// info fans out the three lookups of a. Every slot is written by exactly one
// goroutine and no goroutine returns an error, so a failing lookup never
// cancels the others.
func info(ctx context.Context, a Agency, id identifier.Identifier) InfoResult {
	var out InfoResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Handle = a.HandleInfo(gctx, id)
		return nil
	})
	g.Go(func() error {
		out.Prefix = a.PublisherInfo(gctx, id)
		return nil
	})
	g.Go(func() error {
		out.Metadata = a.Metadata(gctx, id)
		return nil
	})
	_ = g.Wait()
	return out
}

// metadataURL renders "<base>/<path>/<doi>" or reports the invalid identifier.
func metadataURL(baseURL, path string, id identifier.Identifier) (string, Result) {
	doi, err := id.DOIString()
	if err != nil {
		return "", Failure{Message: err.Error()}
	}
	return baseURL + "/" + path + "/" + escapeDOI(doi), nil
}
