package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cloudlead/internal/config"
	"cloudlead/internal/models"
)

const (
	TableProjects = "Projects"
	TableLeads    = "Leads"

	// MaxBatchSize is the most records the store accepts in one write.
	MaxBatchSize = 10

	newProjectsFormula = "{Status} = 'New'"
	maxErrorBody       = 4096
)

// APIError is a non-200 response reported by the record store.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Projects and Leads tables of one base.
type Client struct {
	baseURL    string
	token      string
	filter     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	now        func() time.Time
}

// New constructs a client from config.
func New(cfg config.Config, logger *zap.Logger) *Client {
	timeout := cfg.HTTPClientTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.AirtableRateLimit > 0 {
		limit = rate.Limit(cfg.AirtableRateLimit)
	}
	filter := cfg.AirtableFilter
	if filter == "" {
		filter = config.FilterFormula
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.AirtableAPIURL, "/") + "/" + url.PathEscape(cfg.AirtableBaseID),
		token:      cfg.AirtableToken,
		filter:     filter,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.With(zap.String("component", "airtable")),
		now:        time.Now,
	}
}

type record struct {
	ID          string         `json:"id,omitempty"`
	Fields      map[string]any `json:"fields"`
	CreatedTime string         `json:"createdTime,omitempty"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

type writeRequest struct {
	Records []record `json:"records"`
}

// FetchNewProjects returns every project in status New. Errors are logged and
// produce an empty result.
func (c *Client) FetchNewProjects(ctx context.Context) []models.Project {
	c.logger.Info("checking for new projects", zap.String("filter", c.filter))

	var projects []models.Project
	offset := ""
	for {
		query := url.Values{}
		if c.filter == config.FilterFormula {
			query.Set("filterByFormula", newProjectsFormula)
		}
		if offset != "" {
			query.Set("offset", offset)
		}

		body, err := c.do(ctx, http.MethodGet, TableProjects, query, nil)
		if err != nil {
			c.logger.Error("list projects failed", zap.Error(err))
			return nil
		}
		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			c.logger.Error("decode project list failed", zap.Error(eris.Wrap(err, "decode list response")))
			return nil
		}
		for _, rec := range page.Records {
			p := projectFromRecord(rec)
			if p.Status != models.StatusNew {
				continue
			}
			projects = append(projects, p)
		}
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	c.logger.Info("found new projects", zap.Int("count", len(projects)))
	return projects
}

// SetProjectStatus writes Status and Lead Count, stamping Date Completed for
// completed projects. It reports whether the store accepted the update.
func (c *Client) SetProjectStatus(ctx context.Context, projectID, status string, leadCount int) bool {
	fields := map[string]any{
		"Status":     status,
		"Lead Count": leadCount,
	}
	if status == models.StatusCompleted {
		fields["Date Completed"] = c.timestamp()
	}
	req := writeRequest{Records: []record{{ID: projectID, Fields: fields}}}

	log := c.logger.With(zap.String("project_id", projectID), zap.String("status", status))
	if _, err := c.do(ctx, http.MethodPatch, TableProjects, nil, req); err != nil {
		log.Error("update project status failed", zap.Error(err))
		return false
	}
	log.Info("updated project status")
	return true
}

// InsertLeads writes leads for a project in batches of MaxBatchSize. It stops
// at the first rejected batch; batches already written are kept.
func (c *Client) InsertLeads(ctx context.Context, projectID string, leads []models.Lead) bool {
	log := c.logger.With(zap.String("project_id", projectID))
	if len(leads) == 0 {
		log.Warn("no leads to add")
		return true
	}

	verified := c.timestamp()
	records := make([]record, 0, len(leads))
	for _, lead := range leads {
		records = append(records, leadRecord(projectID, lead, verified))
	}

	for start := 0; start < len(records); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		if _, err := c.do(ctx, http.MethodPost, TableLeads, nil, writeRequest{Records: batch}); err != nil {
			log.Error("add leads batch failed", zap.Int("offset", start), zap.Int("batch", len(batch)), zap.Error(err))
			return false
		}
		log.Info("added leads batch", zap.Int("batch", len(batch)))
	}
	return true
}

// CreateProject inserts a project in status New. A store rejection is
// returned as *APIError.
func (c *Client) CreateProject(ctx context.Context, in models.ProjectInput) error {
	fields := map[string]any{
		"Project Name": in.Name,
		"Industry":     in.Industry,
		"Region":       in.Region,
		"Lead Count":   in.LeadCount,
		"Status":       models.StatusNew,
		"Date Created": c.timestamp(),
	}
	if _, err := c.do(ctx, http.MethodPost, TableProjects, nil, writeRequest{Records: []record{{Fields: fields}}}); err != nil {
		return err
	}
	c.logger.Info("project created", zap.String("project_name", in.Name))
	return nil
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "wait for rate limiter")
	}

	endpoint := c.baseURL + "/" + url.PathEscape(table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, eris.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "%s %s", method, table)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		text := string(respBody)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: text}
	}
	return respBody, nil
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(time.RFC3339)
}
