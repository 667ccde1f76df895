// Package mcp exposes the DOI tools over the Model Context Protocol so an
// agent can resolve identifiers and query registration agencies directly.
package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"doitip/internal/doira"
	"doitip/internal/identifier"
	"doitip/internal/logging"
)

// Server wraps the MCP SDK server around a doira.Router.
type Server struct {
	MCPServer *sdkmcp.Server
	router    *doira.Router
}

// NewServer creates an MCP server whose tools call router.
func NewServer(router *doira.Router, version string) *Server {
	s := &Server{router: router}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "doitip", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "resolve",
		Description: "Resolve a DOI through doi.org and list every redirect hop with status and elapsed time.",
	}, s.handleResolve)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "ra_lookup",
		Description: "Show which Registration Agency governs a DOI, as reported by doi.org.",
	}, s.handleRALookup)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "handle_info",
		Description: "Show the doi.org handle record for a DOI.",
	}, s.handleHandleInfo)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "meta",
		Description: "Find the DOI's Registration Agency and return its handle, prefix and metadata records.",
	}, s.handleMeta)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "prefixes",
		Description: "List the DOI prefixes registered by a Registration Agency (crossref, datacite, medra).",
	}, s.handlePrefixes)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "providers",
		Description: "List the member organisations of a Registration Agency. Only DataCite publishes this listing.",
	}, s.handleProviders)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_ras",
		Description: "List the names of the Registration Agencies this server knows, as accepted by prefixes and providers.",
	}, s.handleListRAs)
}

// --- Tool input/output types ---

type doiInput struct {
	DOI string `json:"doi" jsonschema:"DOI, with or without the doi: scheme, e.g. 10.5281/zenodo.1234"`
}

type resolveInput struct {
	DOI    string `json:"doi" jsonschema:"DOI to resolve"`
	Accept string `json:"accept,omitempty" jsonschema:"Accept header for the resolve request (default */*)"`
}

type raInput struct {
	RA string `json:"ra" jsonschema:"Registration Agency name (crossref, datacite, medra)"`
}

type emptyInput struct{}

// resultOutput carries a normalized result, which may be any JSON value.
type resultOutput struct {
	Result any `json:"result"`
}

type resolveOutput struct {
	Hops []doira.Hop `json:"hops"`
}

type listOutput struct {
	RAs []string `json:"ras"`
}

// --- Tool handlers ---

func (s *Server) handleResolve(ctx context.Context, _ *sdkmcp.CallToolRequest, input resolveInput) (*sdkmcp.CallToolResult, resolveOutput, error) {
	id, err := identifier.RequireDOI(input.DOI)
	if err != nil {
		return nil, resolveOutput{}, err
	}
	hops, err := s.router.Resolve(ctx, id, input.Accept)
	if err != nil {
		return nil, resolveOutput{}, fmt.Errorf("resolve: %w", err)
	}
	return nil, resolveOutput{Hops: hops}, nil
}

func (s *Server) handleRALookup(ctx context.Context, _ *sdkmcp.CallToolRequest, input doiInput) (*sdkmcp.CallToolResult, resultOutput, error) {
	id, err := identifier.RequireDOI(input.DOI)
	if err != nil {
		return nil, resultOutput{}, err
	}
	doc, err := s.router.LookupRA(ctx, id)
	if err != nil {
		return nil, resultOutput{}, lookupError(id, err)
	}
	return nil, resultOutput{Result: doc}, nil
}

func (s *Server) handleHandleInfo(ctx context.Context, _ *sdkmcp.CallToolRequest, input doiInput) (*sdkmcp.CallToolResult, resultOutput, error) {
	id, err := identifier.RequireDOI(input.DOI)
	if err != nil {
		return nil, resultOutput{}, err
	}
	doc, err := s.router.Handle(ctx, id)
	if err != nil {
		return nil, resultOutput{}, lookupError(id, err)
	}
	return nil, resultOutput{Result: doc}, nil
}

func (s *Server) handleMeta(ctx context.Context, _ *sdkmcp.CallToolRequest, input doiInput) (*sdkmcp.CallToolResult, doira.InfoResult, error) {
	id, err := identifier.RequireDOI(input.DOI)
	if err != nil {
		return nil, doira.InfoResult{}, err
	}
	ra, err := s.router.DOIRA(ctx, id)
	if err != nil {
		return nil, doira.InfoResult{}, err
	}
	logging.New("mcp").Info("meta", "doi", id.String(), "ra", ra.Name())
	return nil, ra.Info(ctx, id), nil
}

func (s *Server) handlePrefixes(ctx context.Context, _ *sdkmcp.CallToolRequest, input raInput) (*sdkmcp.CallToolResult, resultOutput, error) {
	ra, err := s.router.Agency(input.RA)
	if err != nil {
		return nil, resultOutput{}, err
	}
	return nil, resultOutput{Result: ra.Prefixes(ctx)}, nil
}

func (s *Server) handleProviders(ctx context.Context, _ *sdkmcp.CallToolRequest, input raInput) (*sdkmcp.CallToolResult, resultOutput, error) {
	ra, err := s.router.Agency(input.RA)
	if err != nil {
		return nil, resultOutput{}, err
	}
	return nil, resultOutput{Result: ra.Providers(ctx)}, nil
}

func (s *Server) handleListRAs(context.Context, *sdkmcp.CallToolRequest, emptyInput) (*sdkmcp.CallToolResult, listOutput, error) {
	var out listOutput
	for _, k := range s.router.List() {
		out.RAs = append(out.RAs, k.Key())
	}
	return nil, out, nil
}

func lookupError(id identifier.Identifier, err error) error {
	if doira.IsNotFound(err) {
		return fmt.Errorf("doi %s is not registered: %w", id, err)
	}
	return err
}
