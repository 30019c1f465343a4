// Package contact creates CRM contacts in HubSpot.
package contact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CerealNotFound/function-calling-server/actions"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/integration"
)

const (
	// Action is the catalogue name this handler serves.
	Action = "createContact"
	// DefaultBaseURL is the HubSpot API root.
	DefaultBaseURL = "https://api.hubapi.com"

	contactsPath = "/crm/v3/objects/contacts"
)

// Contact is the validated argument payload. Field names are HubSpot
// contact property names.
type Contact struct {
	Email          string `json:"email"`
	FirstName      string `json:"firstname"`
	LastName       string `json:"lastname,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Company        string `json:"company,omitempty"`
	Website        string `json:"website,omitempty"`
	LifecycleStage string `json:"lifecyclestage,omitempty"`
}

// Result is the success payload recorded for the model.
type Result struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Handler posts contacts to the HubSpot CRM objects API.
type Handler struct {
	client *integration.Client
}

// New creates a Handler.
func New(client *integration.Client) *Handler {
	return &Handler{client: client}
}

// Register binds a Handler to Action in set.
func Register(set *actions.HandlerSet, client *integration.Client) error {
	return set.Register(Action, New(client))
}

func (h *Handler) Execute(ctx context.Context, args actions.Arguments) protocol.Outcome {
	var c Contact
	if err := args.Decode(&c); err != nil {
		return protocol.HandlerFailure(Action, protocol.CauseInvalidArguments, err.Error())
	}

	props, err := properties(c)
	if err != nil {
		return protocol.HandlerFailure(Action, protocol.CauseInvalidArguments, err.Error())
	}

	res, err := h.client.Post(ctx, contactsPath, nil, map[string]any{"properties": props})
	if err != nil {
		return integration.Fail(Action, err)
	}

	id := res.Get("id").String()
	if id == "" {
		return protocol.HandlerFailure(Action, protocol.CauseMalformedResponse, "response carries no contact id")
	}

	return protocol.Success(Action, Result{
		ID:        id,
		Email:     c.Email,
		CreatedAt: res.Get("createdAt").String(),
	})
}

func properties(c Contact) (map[string]string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode contact: %w", err)
	}
	var props map[string]string
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("encode contact: %w", err)
	}
	return props, nil
}
