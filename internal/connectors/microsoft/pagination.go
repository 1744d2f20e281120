package microsoft

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

// HeaderConsistencyLevel enables advanced query capabilities on directory and mail queries.
const HeaderConsistencyLevel = "ConsistencyLevel"

// Page is one page of a message listing.
type Page struct {
	// Number is 1-based.
	Number   int
	Messages []domain.Message
	NextLink string
	// Count is @odata.count when $count was requested.
	Count *int
}

// ListMessages returns every message matching q, following continuation links.
func (m *MailClient) ListMessages(ctx context.Context, q domain.ListQuery) ([]domain.Message, error) {
	if err := validateListQuery(q); err != nil {
		return nil, err
	}

	messages := []domain.Message{}
	for page, err := range m.Pages(ctx, q) {
		if err != nil {
			return nil, err
		}
		messages = append(messages, page.Messages...)
	}

	m.logger.Debug("listed messages", "operation", "list_messages", "mailbox", q.Mailbox, "count", len(messages))
	return messages, nil
}

// Pages returns a lazy sequence of pages. Each range over it starts again
// from the first page. Iteration stops at the first error, at the last page,
// or after q.MaxPages pages when that is positive.
func (m *MailClient) Pages(ctx context.Context, q domain.ListQuery) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		if err := validateListQuery(q); err != nil {
			yield(Page{}, err)
			return
		}

		req := firstPageRequest(m.client, q)
		log := m.logger.With("operation", "list_messages", "mailbox", q.Mailbox, "folder", q.Folder)

		for number := 1; ; number++ {
			page, err := m.fetchPage(ctx, number, req)
			if err != nil {
				logListError(log, err)
				yield(Page{}, WrapError(err))
				return
			}
			log.Debug("fetched page", "page", number, "messages", len(page.Messages))

			if !yield(page, nil) {
				return
			}
			if page.NextLink == "" {
				return
			}
			if q.MaxPages > 0 && number >= q.MaxPages {
				log.Warn("page limit reached, more results available", "max_pages", q.MaxPages)
				return
			}
			if page.NextLink == req.url {
				yield(Page{}, fmt.Errorf("%w: %s", domain.ErrPaginationLoop, redactURL(page.NextLink)))
				return
			}

			// The link already encodes the original query; only headers carry over.
			req = request{method: http.MethodGet, url: page.NextLink, header: req.header}
		}
	}
}

func (m *MailClient) fetchPage(ctx context.Context, number int, req request) (Page, error) {
	var page Page
	err := m.client.Execute(ctx, "list_messages", func(ctx context.Context) error {
		data, err := m.client.do(ctx, req)
		if err != nil {
			return err
		}

		var resp listResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("decode page %d: %w", number, err)
		}

		page = Page{
			Number:   number,
			Messages: make([]domain.Message, len(resp.Value)),
			NextLink: resp.NextLink,
			Count:    resp.Count,
		}
		for i, v := range resp.Value {
			page.Messages[i] = domain.Message(v)
		}
		return nil
	})
	return page, err
}

// validateListQuery rejects queries that must never reach the network.
func validateListQuery(q domain.ListQuery) error {
	if q.Filter != "" && q.Search != "" {
		return fmt.Errorf("%w: filter and search cannot be used together", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(q.Mailbox) == "" {
		return fmt.Errorf("%w: mailbox is required", domain.ErrInvalidInput)
	}
	if q.PageSize < 0 || q.MaxPages < 0 {
		return fmt.Errorf("%w: page size and page limit must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

// firstPageRequest builds the initial list request from the query.
func firstPageRequest(c *Client, q domain.ListQuery) request {
	folder := q.Folder
	if folder == "" {
		folder = domain.DefaultFolder
	}

	params := url.Values{}
	if q.Filter != "" {
		params.Set("$filter", q.Filter)
	}
	if q.Search != "" {
		params.Set("$search", q.Search)
	}
	if len(q.Select) > 0 {
		params.Set("$select", strings.Join(q.Select, ","))
	}
	if q.PageSize > 0 {
		params.Set("$top", strconv.Itoa(q.PageSize))
	}
	if q.CountEnabled() {
		params.Set("$count", "true")
	}

	u := c.url("users", q.Mailbox, "mailFolders", folder, "messages")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	header := http.Header{}
	if q.AdvancedQuery || q.Filter != "" {
		header.Set(HeaderConsistencyLevel, "eventual")
	}

	return request{method: http.MethodGet, url: u, header: header}
}

func logListError(log interface{ Error(string, ...any) }, err error) {
	switch {
	case IsBadRequest(err):
		log.Error("bad request listing messages", "status", http.StatusBadRequest, "error", err)
	case IsUnauthorized(err):
		log.Error("unauthorised listing messages, check the application has Mail.ReadWrite",
			"status", http.StatusUnauthorized)
	default:
		log.Error("list messages failed", "error", err)
	}
}
