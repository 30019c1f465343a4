// Package sheets creates and writes Google Sheets spreadsheets.
package sheets

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/CerealNotFound/function-calling-server/actions"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/integration"
)

const (
	// CreateAction creates an empty spreadsheet.
	CreateAction = "createSpreadsheet"
	// UpdateAction writes rows into an existing spreadsheet.
	UpdateAction = "updateSheetValues"

	// DefaultBaseURL is the Sheets API root.
	DefaultBaseURL = "https://sheets.googleapis.com"
	// DefaultRange is written when the model names no range.
	DefaultRange = "Sheet1"
)

// NewSheet is the createSpreadsheet argument payload.
type NewSheet struct {
	Title string `json:"title"`
}

// Update is the updateSheetValues argument payload.
type Update struct {
	SpreadsheetID string     `json:"spreadsheetId"`
	Range         string     `json:"range"`
	Values        [][]string `json:"values"`
}

// Created is the createSpreadsheet success payload.
type Created struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	SpreadsheetURL string `json:"spreadsheetUrl,omitempty"`
	Title          string `json:"title"`
}

// Updated is the updateSheetValues success payload.
type Updated struct {
	SpreadsheetID string `json:"spreadsheetId"`
	UpdatedRange  string `json:"updatedRange"`
	UpdatedRows   int64  `json:"updatedRows"`
	UpdatedCells  int64  `json:"updatedCells"`
}

// Service talks to the Sheets v4 API. Its Create and Update methods are
// the handlers for CreateAction and UpdateAction.
type Service struct {
	client *integration.Client
}

// New creates a Service.
func New(client *integration.Client) *Service {
	return &Service{client: client}
}

// Register binds both spreadsheet actions in set.
func Register(set *actions.HandlerSet, client *integration.Client) error {
	s := New(client)
	if err := set.Register(CreateAction, actions.HandlerFunc(s.Create)); err != nil {
		return err
	}
	return set.Register(UpdateAction, actions.HandlerFunc(s.Update))
}

// Create handles CreateAction.
func (s *Service) Create(ctx context.Context, args actions.Arguments) protocol.Outcome {
	var in NewSheet
	if err := args.Decode(&in); err != nil {
		return protocol.HandlerFailure(CreateAction, protocol.CauseInvalidArguments, err.Error())
	}
	if strings.TrimSpace(in.Title) == "" {
		return protocol.HandlerFailure(CreateAction, protocol.CauseInvalidArguments, "title is empty")
	}

	query := url.Values{"fields": {"spreadsheetId,spreadsheetUrl"}}
	body := map[string]any{"properties": map[string]string{"title": in.Title}}

	res, err := s.client.Post(ctx, "/v4/spreadsheets", query, body)
	if err != nil {
		return integration.Fail(CreateAction, err)
	}

	id := res.Get("spreadsheetId").String()
	if id == "" {
		return protocol.HandlerFailure(CreateAction, protocol.CauseMalformedResponse, "response carries no spreadsheet id")
	}

	return protocol.Success(CreateAction, Created{
		SpreadsheetID:  id,
		SpreadsheetURL: res.Get("spreadsheetUrl").String(),
		Title:          in.Title,
	})
}

// Update handles UpdateAction.
func (s *Service) Update(ctx context.Context, args actions.Arguments) protocol.Outcome {
	var in Update
	if err := args.Decode(&in); err != nil {
		return protocol.HandlerFailure(UpdateAction, protocol.CauseInvalidArguments, err.Error())
	}
	if strings.TrimSpace(in.SpreadsheetID) == "" {
		return protocol.HandlerFailure(UpdateAction, protocol.CauseInvalidArguments, "spreadsheetId is empty")
	}
	if len(in.Values) == 0 {
		return protocol.HandlerFailure(UpdateAction, protocol.CauseInvalidArguments, "values has no rows")
	}
	if in.Range == "" {
		in.Range = DefaultRange
	}

	path := fmt.Sprintf("/v4/spreadsheets/%s/values/%s", url.PathEscape(in.SpreadsheetID), url.PathEscape(in.Range))
	query := url.Values{"valueInputOption": {"USER_ENTERED"}}
	body := map[string]any{
		"range":          in.Range,
		"majorDimension": "ROWS",
		"values":         in.Values,
	}

	res, err := s.client.Put(ctx, path, query, body)
	if err != nil {
		return integration.Fail(UpdateAction, err)
	}

	return protocol.Success(UpdateAction, Updated{
		SpreadsheetID: in.SpreadsheetID,
		UpdatedRange:  res.Get("updatedRange").String(),
		UpdatedRows:   res.Get("updatedRows").Int(),
		UpdatedCells:  res.Get("updatedCells").Int(),
	})
}
