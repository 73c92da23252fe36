// Package firefly exposes one-tap transaction shortcuts backed by a Firefly
// III instance. Shortcuts are static configuration; this package resolves
// budget names to IDs and submits withdrawal transactions through the
// Firefly REST API, passing Firefly's responses through to the caller.
package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrUnknownShortcut means the request named a shortcut ID that is not
	// configured.
	ErrUnknownShortcut = errors.New("no shortcut with that ID")

	// ErrNoAmount means neither the shortcut nor the request carries an
	// amount for the transaction.
	ErrNoAmount = errors.New("shortcut has no amount and no override was given")
)

// Shortcut is one configured transaction template. The JSON field names are
// part of the client contract; optional fields serialize as null when unset.
type Shortcut struct {
	ID          uint64   `json:"shortcut_id"`
	DisplayName string   `json:"shortcut_name"`
	Icon        string   `json:"shortcut_icon"`
	Description string   `json:"name"`
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Amount      *float32 `json:"amount"`
	Budget      *string  `json:"budget"`
	Category    *string  `json:"category"`
}

// Client talks to one Firefly III instance on behalf of the configured
// shortcuts.
type Client struct {
	baseURL   string
	pat       string
	userAgent string
	shortcuts []Shortcut
	client    *http.Client
}

// NewClient loads the personal access token and the shortcut list from
// their files and assigns shortcut IDs in configuration order, starting at
// zero. Trailing whitespace in the token file is ignored.
func NewClient(fireflyURL, patFile, shortcutsFile, userAgent string) (*Client, error) {
	pat, err := os.ReadFile(patFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read firefly PAT from file %s: %w", patFile, err)
	}

	data, err := os.ReadFile(shortcutsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read firefly shortcuts from file %s: %w", shortcutsFile, err)
	}

	var shortcuts []Shortcut
	if err := json.Unmarshal(data, &shortcuts); err != nil {
		return nil, fmt.Errorf("failed to parse firefly shortcuts file %s: %w", shortcutsFile, err)
	}
	for i := range shortcuts {
		shortcuts[i].ID = uint64(i)
	}

	return &Client{
		baseURL:   strings.TrimSuffix(fireflyURL, "/"),
		pat:       strings.TrimRightFunc(string(pat), unicode.IsSpace),
		userAgent: userAgent,
		shortcuts: shortcuts,
		client:    &http.Client{},
	}, nil
}

// Shortcuts returns the configured shortcuts in ID order.
func (c *Client) Shortcuts() []Shortcut {
	return c.shortcuts
}

// AddTransaction submits the shortcut's withdrawal to Firefly, with the
// amount taken from the override when one is given. On success it returns
// the raw Firefly response body.
func (c *Client) AddTransaction(ctx context.Context, shortcutID uint64, amountOverride *float32) (string, error) {
	var shortcut *Shortcut
	for i := range c.shortcuts {
		if c.shortcuts[i].ID == shortcutID {
			shortcut = &c.shortcuts[i]
			break
		}
	}
	if shortcut == nil {
		return "", fmt.Errorf("%w: %d", ErrUnknownShortcut, shortcutID)
	}

	budgetID, err := c.resolveBudget(ctx, shortcut.Budget)
	if err != nil {
		return "", fmt.Errorf("could not resolve budget ID: %w", err)
	}

	payload, err := storeTransactionRequest(shortcut, amountOverride, budgetID)
	if err != nil {
		return "", err
	}

	body, err := c.do(ctx, http.MethodPost, "/v1/transactions", payload)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

type budgetList struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Name string `json:"name"`
		} `json:"attributes"`
	} `json:"data"`
}

// resolveBudget maps a configured budget name to its Firefly ID, or returns
// nil when the shortcut has no budget.
func (c *Client) resolveBudget(ctx context.Context, budget *string) (*string, error) {
	if budget == nil {
		return nil, nil
	}

	body, err := c.do(ctx, http.MethodGet, "/v1/budgets", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching budgets: %w", err)
	}

	var budgets budgetList
	if err := json.Unmarshal(body, &budgets); err != nil {
		return nil, fmt.Errorf("parsing budgets: %w", err)
	}

	for _, b := range budgets.Data {
		if b.Attributes.Name == *budget {
			id := b.ID
			return &id, nil
		}
	}

	return nil, fmt.Errorf("could not find budget with name %s", *budget)
}

type storeTransaction struct {
	ErrorIfDuplicateHash bool                    `json:"error_if_duplicate_hash"`
	ApplyRules           bool                    `json:"apply_rules"`
	FireWebhooks         bool                    `json:"fire_webhooks"`
	Transactions         []storeTransactionSplit `json:"transactions"`
}

type storeTransactionSplit struct {
	Type            string  `json:"type"`
	Date            string  `json:"date"`
	Amount          string  `json:"amount"`
	Description     string  `json:"description"`
	BudgetID        *string `json:"budget_id"`
	CategoryName    *string `json:"category_name"`
	SourceName      string  `json:"source_name"`
	DestinationName string  `json:"destination_name"`
}

// transactionDateLayout is the timestamp format Firefly accepts, local time
// with a numeric zone offset, e.g. 2018-09-17T12:46:47+01:00.
const transactionDateLayout = "2006-01-02T15:04:05-07:00"

func storeTransactionRequest(shortcut *Shortcut, amountOverride *float32, budgetID *string) (*storeTransaction, error) {
	amount := amountOverride
	if amount == nil {
		amount = shortcut.Amount
	}
	if amount == nil {
		return nil, ErrNoAmount
	}

	return &storeTransaction{
		ErrorIfDuplicateHash: true,
		ApplyRules:           true,
		FireWebhooks:         true,
		Transactions: []storeTransactionSplit{{
			Type:            "withdrawal",
			Date:            time.Now().Format(transactionDateLayout),
			Amount:          strconv.FormatFloat(float64(*amount), 'f', -1, 32),
			Description:     shortcut.Description,
			BudgetID:        budgetID,
			CategoryName:    shortcut.Category,
			SourceName:      shortcut.Source,
			DestinationName: shortcut.Destination,
		}},
	}, nil
}

// do performs one Firefly API request and returns the response body. An
// error status from Firefly is an error here, with the body included since
// Firefly puts its diagnostics there.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode firefly request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build firefly request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.pat)
	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send firefly request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read firefly response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("firefly API returned %s: %s", resp.Status, respBody)
	}

	return respBody, nil
}
