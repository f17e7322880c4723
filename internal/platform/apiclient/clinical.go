package apiclient

import (
	"context"
	"net/http"

	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

// ARV regimens

func (c *Client) ListARVRegimens(ctx context.Context) ([]clinicmodels.ARVRegimen, error) {
	return getList[clinicmodels.ARVRegimen](ctx, c, "/api/arv-regimens", nil)
}

func (c *Client) ListMyARVRegimens(ctx context.Context) ([]clinicmodels.ARVRegimen, error) {
	return getList[clinicmodels.ARVRegimen](ctx, c, "/api/arv-regimens/me", nil)
}

func (c *Client) ListARVRegimensByCustomer(ctx context.Context, customerID int64) ([]clinicmodels.ARVRegimen, error) {
	return getList[clinicmodels.ARVRegimen](ctx, c, "/api/arv-regimens/customer/"+itoa(customerID), nil)
}

func (c *Client) GetARVRegimen(ctx context.Context, regimenID int64) (*clinicmodels.ARVRegimen, error) {
	return getOne[clinicmodels.ARVRegimen](ctx, c, "/api/arv-regimens/"+itoa(regimenID), nil)
}

func (c *Client) CreateARVRegimen(ctx context.Context, r *clinicmodels.ARVRegimen) (*clinicmodels.ARVRegimen, error) {
	var out clinicmodels.ARVRegimen
	if err := c.sendJSON(ctx, http.MethodPost, "/api/arv-regimens", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateARVRegimen(ctx context.Context, regimenID int64, r *clinicmodels.ARVRegimen) (*clinicmodels.ARVRegimen, error) {
	var out clinicmodels.ARVRegimen
	if err := c.sendJSON(ctx, http.MethodPut, "/api/arv-regimens/"+itoa(regimenID), r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateARVWithHistory creates a regimen and its medical-history entry in
// one call.
func (c *Client) CreateARVWithHistory(ctx context.Context, p *clinicmodels.ARVWithHistory) (*clinicmodels.ARVRegimen, error) {
	var out clinicmodels.ARVRegimen
	if err := c.sendJSON(ctx, http.MethodPost, "/api/arv-regimens/with-history", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateARVWithHistory(ctx context.Context, regimenID int64, p *clinicmodels.ARVWithHistory) (*clinicmodels.ARVRegimen, error) {
	var out clinicmodels.ARVRegimen
	if err := c.sendJSON(ctx, http.MethodPut, "/api/arv-regimens/with-history/"+itoa(regimenID), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteARVRegimen(ctx context.Context, regimenID int64) error {
	return c.delete(ctx, "/api/arv-regimens/"+itoa(regimenID))
}

// Medical histories

func (c *Client) ListMedicalHistories(ctx context.Context) ([]clinicmodels.MedicalHistory, error) {
	return getList[clinicmodels.MedicalHistory](ctx, c, "/api/medical-histories", nil)
}

func (c *Client) ListMedicalHistoriesByCustomer(ctx context.Context, customerID int64) ([]clinicmodels.MedicalHistory, error) {
	return getList[clinicmodels.MedicalHistory](ctx, c, "/api/medical-histories/customer/"+itoa(customerID), nil)
}

func (c *Client) GetMedicalHistory(ctx context.Context, historyID int64) (*clinicmodels.MedicalHistory, error) {
	return getOne[clinicmodels.MedicalHistory](ctx, c, "/api/medical-histories/"+itoa(historyID), nil)
}

func (c *Client) CreateMedicalHistory(ctx context.Context, h *clinicmodels.MedicalHistory) (*clinicmodels.MedicalHistory, error) {
	var out clinicmodels.MedicalHistory
	if err := c.sendJSON(ctx, http.MethodPost, "/api/medical-histories", h, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMedicalHistory(ctx context.Context, historyID int64, h *clinicmodels.MedicalHistory) (*clinicmodels.MedicalHistory, error) {
	var out clinicmodels.MedicalHistory
	if err := c.sendJSON(ctx, http.MethodPut, "/api/medical-histories/"+itoa(historyID), h, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMedicalHistory(ctx context.Context, historyID int64) error {
	return c.delete(ctx, "/api/medical-histories/"+itoa(historyID))
}

// Test results

func (c *Client) ListTestResults(ctx context.Context) ([]clinicmodels.TestResult, error) {
	return getList[clinicmodels.TestResult](ctx, c, "/api/test-results", nil)
}

func (c *Client) ListMyTestResults(ctx context.Context) ([]clinicmodels.TestResult, error) {
	return getList[clinicmodels.TestResult](ctx, c, "/api/test-results/me", nil)
}

func (c *Client) GetTestResult(ctx context.Context, resultID int64) (*clinicmodels.TestResult, error) {
	return getOne[clinicmodels.TestResult](ctx, c, "/api/test-results/"+itoa(resultID), nil)
}

func (c *Client) CreateTestResult(ctx context.Context, r *clinicmodels.TestResult) (*clinicmodels.TestResult, error) {
	var out clinicmodels.TestResult
	if err := c.sendJSON(ctx, http.MethodPost, "/api/test-results", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTestResult(ctx context.Context, resultID int64, r *clinicmodels.TestResult) (*clinicmodels.TestResult, error) {
	var out clinicmodels.TestResult
	if err := c.sendJSON(ctx, http.MethodPut, "/api/test-results/"+itoa(resultID), r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTestResult(ctx context.Context, resultID int64) error {
	return c.delete(ctx, "/api/test-results/"+itoa(resultID))
}
