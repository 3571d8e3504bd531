package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrMissingCredentials is returned when the service account key file is not configured or does not exist.
var ErrMissingCredentials = errors.New("credentials file is not set or does not exist")

type Client struct {
	service *sheets.Service
}

// NewClient creates a Sheets client authenticated with the service account key at credentialsFile.
// Extra options are appended after the credentials option, which lets tests point the client at a fake endpoint.
func NewClient(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*Client, error) {
	if credentialsFile == "" {
		return nil, ErrMissingCredentials
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, credentialsFile)
	}

	opts = append([]option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	}, opts...)

	return newClient(ctx, opts...)
}

func newClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service: service,
	}, nil
}

// ReadColumns fetches several ranges in one request with COLUMNS as the major dimension.
// The result holds one slice per requested range; a range with no values yields an empty slice.
func (c *Client) ReadColumns(ctx context.Context, spreadsheetID string, ranges ...string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.BatchGet(spreadsheetID).
		Ranges(ranges...).
		MajorDimension("COLUMNS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	columns := make([][]interface{}, len(ranges))
	for i := range columns {
		if i >= len(resp.ValueRanges) {
			break
		}
		vr := resp.ValueRanges[i]
		if vr != nil && len(vr.Values) > 0 {
			columns[i] = vr.Values[0]
		}
	}

	return columns, nil
}

func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, range_, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update range: %w", err)
	}

	return nil
}
