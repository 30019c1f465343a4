package sheets_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/CerealNotFound/function-calling-server/actions"
	"github.com/CerealNotFound/function-calling-server/catalog"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/handlers/sheets"
	"github.com/CerealNotFound/function-calling-server/integration"
)

func setup(t *testing.T, handler http.HandlerFunc) *actions.Executor {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := integration.DefaultConfig(srv.URL)
	client, err := integration.New("sheets", &cfg)
	require.NoError(t, err)

	reg := actions.NewRegistry()
	require.NoError(t, catalog.Register(reg, catalog.Default()))

	set := actions.NewHandlerSet()
	require.NoError(t, sheets.Register(set, client))

	return actions.NewExecutor(reg, set, 0)
}

func TestCreateSpreadsheet(t *testing.T) {
	exec := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v4/spreadsheets", r.URL.Path)

		data, _ := io.ReadAll(r.Body)
		assert.Equal(t, "Q3 leads", gjson.GetBytes(data, "properties.title").String())

		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-1","spreadsheetUrl":"https://docs.google.com/spreadsheets/d/sheet-1"}`)
	})

	out := exec.Execute(context.Background(), protocol.NewToolCall("c1", sheets.CreateAction, `{"title":"Q3 leads"}`))
	require.True(t, out.Succeeded(), "outcome: %+v", out.Error)

	var res sheets.Created
	require.NoError(t, json.Unmarshal(out.Payload, &res))
	assert.Equal(t, "sheet-1", res.SpreadsheetID)
	assert.Equal(t, "Q3 leads", res.Title)
}

func TestCreateSpreadsheet_BlankTitle(t *testing.T) {
	exec := setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("downstream should not be called")
	})

	out := exec.Execute(context.Background(), protocol.NewToolCall("c1", sheets.CreateAction, `{"title":"  "}`))

	require.False(t, out.Succeeded())
	assert.Equal(t, protocol.CauseInvalidArguments, out.Error.Cause)
}

func TestUpdateSheetValues(t *testing.T) {
	tests := []struct {
		name      string
		args      string
		wantPath  string
		wantRange string
	}{
		{
			name:      "explicit range",
			args:      `{"spreadsheetId":"sheet-1","range":"Leads!A1","values":[["Jane","jane@example.com"]]}`,
			wantPath:  "/v4/spreadsheets/sheet-1/values/Leads!A1",
			wantRange: "Leads!A1",
		},
		{
			name:      "default range",
			args:      `{"spreadsheetId":"sheet-1","values":[["a"],["b"]]}`,
			wantPath:  "/v4/spreadsheets/sheet-1/values/Sheet1",
			wantRange: "Sheet1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body gjson.Result
			exec := setup(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))

				data, _ := io.ReadAll(r.Body)
				body = gjson.ParseBytes(data)

				_, _ = io.WriteString(w, `{"updatedRange":"`+tt.wantRange+`","updatedRows":2,"updatedCells":2}`)
			})

			out := exec.Execute(context.Background(), protocol.NewToolCall("c1", sheets.UpdateAction, tt.args))
			require.True(t, out.Succeeded(), "outcome: %+v", out.Error)

			assert.Equal(t, "ROWS", body.Get("majorDimension").String())
			assert.Equal(t, tt.wantRange, body.Get("range").String())

			var res sheets.Updated
			require.NoError(t, json.Unmarshal(out.Payload, &res))
			assert.Equal(t, tt.wantRange, res.UpdatedRange)
			assert.EqualValues(t, 2, res.UpdatedRows)
		})
	}
}

func TestUpdateSheetValues_WrongCellType(t *testing.T) {
	exec := setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("downstream should not be called")
	})

	out := exec.Execute(context.Background(), protocol.NewToolCall("c1", sheets.UpdateAction,
		`{"spreadsheetId":"sheet-1","values":[["a", 3]]}`))

	require.False(t, out.Succeeded())
	assert.Equal(t, protocol.KindSchemaViolation, out.Error.Kind)
	assert.Equal(t, "values[0][1]", out.Error.Field)
}

func TestUpdateSheetValues_NotFound(t *testing.T) {
	exec := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"Requested entity was not found."}}`)
	})

	out := exec.Execute(context.Background(), protocol.NewToolCall("c1", sheets.UpdateAction,
		`{"spreadsheetId":"missing","values":[["a"]]}`))

	require.False(t, out.Succeeded())
	assert.Equal(t, protocol.CauseRejected, out.Error.Cause)
	assert.Contains(t, out.Error.Detail, "not found")
}
