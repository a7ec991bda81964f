// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes diary tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/diary/internal/apperr"
	"github.com/starford/diary/internal/journal"
)

const (
	entryFormatURI = "diary://entry-format"

	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// Server wraps the MCP server with diary tools.
type Server struct {
	mcp *server.MCPServer
	svc *journal.Service
}

// New creates a new MCP server with all diary tools registered.
func New(svc *journal.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Diary",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through diary entry titles, bodies, dates and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read a diary entry with its date, title, tags and body."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry UUID")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Create a new diary entry. Read the contract first via "+
			"the get_entry_contract tool or the "+entryFormatURI+" resource."),
		mcp.WithString("title", mcp.Description("Entry title")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Entry body text")),
		mcp.WithString("date", mcp.Description("RFC 3339 timestamp; defaults to now")),
	), s.createEntry)

	s.mcp.AddTool(mcp.NewTool("list_day_entries",
		mcp.WithDescription("List the entries written on one calendar day."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day as YYYY-MM-DD")),
	), s.listDayEntries)

	s.mcp.AddTool(mcp.NewTool("month_calendar",
		mcp.WithDescription("Render a month as a text calendar. Days with entries are marked with *, today is bracketed."),
		mcp.WithString("month", mcp.Description("Month as YYYY-MM; defaults to the current month")),
	), s.monthCalendar)

	s.mcp.AddTool(mcp.NewTool("get_entry_contract",
		mcp.WithDescription("Returns the diary entry file format contract. "+
			"Call this before creating entries to ensure correct structure."),
	), s.getEntryContract)

	// Resource: entry format contract.
	s.mcp.AddResource(
		mcp.NewResource(entryFormatURI, "Entry Format Contract",
			mcp.WithResourceDescription("File format that all diary entries are stored in."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readEntryFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

type entryView struct {
	ID       uuid.UUID `json:"id"`
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	Tags     []string  `json:"tags"`
	Body     string    `json:"body"`
	Encoding string    `json:"encoding"`
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid id: %s", raw)), nil
	}
	d, err := s.svc.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", raw)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	v := entryView{ID: d.ID, Date: d.Date, Title: d.Title, Tags: d.Tags, Encoding: "text"}
	if utf8.Valid(d.Body) {
		v.Body = string(d.Body)
	} else {
		v.Body = base64.StdEncoding.EncodeToString(d.Body)
		v.Encoding = "base64"
	}
	return jsonResult(v)
}

func (s *Server) createEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := journal.EntryInput{Title: req.GetString("title", ""), Body: []byte(body)}
	if raw := req.GetString("date", ""); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date %q: want RFC 3339", raw)), nil
		}
		in.Date = &t
	}

	d, err := s.svc.Create(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", d.ID)), nil
}

func (s *Server) listDayEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := time.ParseInLocation(dayLayout, raw, s.svc.Calendar().Location())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date %q: want YYYY-MM-DD", raw)), nil
	}
	entries, err := s.svc.Day(ctx, day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no entries on " + raw), nil
	}
	return jsonResult(entries)
}

func (s *Server) monthCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := s.svc.Today()
	if raw := req.GetString("month", ""); raw != "" {
		t, err := time.ParseInLocation(monthLayout, raw, s.svc.Calendar().Location())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid month %q: want YYYY-MM", raw)), nil
		}
		ref = t
	}
	view, err := s.svc.Month(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(journal.RenderMonth(view)), nil
}

func (s *Server) getEntryContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EntryFormatContract), nil
}

func (s *Server) readEntryFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      entryFormatURI,
			MIMEType: "text/markdown",
			Text:     EntryFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
