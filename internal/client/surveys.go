package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/edusurvey/edusurvey/internal/models"
)

// MySurvey returns the caller's survey, or nil if they have not submitted one
func (c *Client) MySurvey(ctx context.Context) (*models.Survey, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/surveys/my-survey", nil, &raw, true); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var survey models.Survey
	if err := json.Unmarshal(raw, &survey); err != nil {
		return nil, fmt.Errorf("failed to decode survey: %w", err)
	}
	return &survey, nil
}

// SubmitSurvey creates the caller's survey
func (c *Client) SubmitSurvey(ctx context.Context, input models.SurveyInput) (*models.Survey, error) {
	var survey models.Survey
	if err := c.do(ctx, http.MethodPost, "/api/surveys", input, &survey, true); err != nil {
		return nil, err
	}
	return &survey, nil
}

// UpdateSurvey replaces the answers of an existing survey
func (c *Client) UpdateSurvey(ctx context.Context, id string, input models.SurveyInput) (*models.Survey, error) {
	var survey models.Survey
	path := "/api/surveys/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, input, &survey, true); err != nil {
		return nil, err
	}
	return &survey, nil
}

// Analytics returns the aggregate across all surveys
func (c *Client) Analytics(ctx context.Context) (*models.Analytics, error) {
	var analytics models.Analytics
	if err := c.do(ctx, http.MethodGet, "/api/surveys/analytics", nil, &analytics, true); err != nil {
		return nil, err
	}
	return &analytics, nil
}

// ListSurveys returns every survey (admin only)
func (c *Client) ListSurveys(ctx context.Context) ([]models.Survey, error) {
	var surveys []models.Survey
	if err := c.do(ctx, http.MethodGet, "/api/surveys", nil, &surveys, true); err != nil {
		return nil, err
	}
	return surveys, nil
}

// DeleteSurvey removes a survey record (admin only)
func (c *Client) DeleteSurvey(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/surveys/"+url.PathEscape(id), nil, nil, true)
}
