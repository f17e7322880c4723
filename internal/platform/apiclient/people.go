package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

// Doctors

func (c *Client) ListDoctors(ctx context.Context) ([]clinicmodels.Doctor, error) {
	return getList[clinicmodels.Doctor](ctx, c, "/api/doctors", nil)
}

// ListDoctorsWithAvatar is the public listing with avatar URLs resolved.
func (c *Client) ListDoctorsWithAvatar(ctx context.Context) ([]clinicmodels.Doctor, error) {
	return getList[clinicmodels.Doctor](ctx, c, "/api/doctors/with-avatar", nil)
}

func (c *Client) GetDoctor(ctx context.Context, doctorID int64) (*clinicmodels.Doctor, error) {
	return getOne[clinicmodels.Doctor](ctx, c, "/api/doctors/"+itoa(doctorID), nil)
}

func (c *Client) GetDoctorMe(ctx context.Context) (*clinicmodels.Doctor, error) {
	return getOne[clinicmodels.Doctor](ctx, c, "/api/doctors/me", nil)
}

func (c *Client) CreateDoctor(ctx context.Context, d *clinicmodels.Doctor) (*clinicmodels.Doctor, error) {
	var out clinicmodels.Doctor
	if err := c.sendJSON(ctx, http.MethodPost, "/api/doctors", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDoctor sends the profile without touching the avatar.
func (c *Client) UpdateDoctor(ctx context.Context, doctorID int64, d *clinicmodels.Doctor) (*clinicmodels.Doctor, error) {
	var out clinicmodels.Doctor
	if err := c.sendJSON(ctx, http.MethodPut, "/api/doctors/update-no-avatar/"+itoa(doctorID), d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDoctorWithAvatar sends a "doctor" JSON part and, when avatar is not
// nil, an "avatar" file part.
func (c *Client) UpdateDoctorWithAvatar(ctx context.Context, doctorID int64, d *clinicmodels.Doctor, avatar *File) (*clinicmodels.Doctor, error) {
	form := NewForm().JSON("doctor", d).File("avatar", avatar)
	var out clinicmodels.Doctor
	if err := c.sendForm(ctx, http.MethodPut, "/api/doctors/"+itoa(doctorID), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDoctor(ctx context.Context, doctorID int64) error {
	return c.delete(ctx, "/api/doctors/"+itoa(doctorID))
}

// Customers

func (c *Client) ListCustomers(ctx context.Context) ([]clinicmodels.Customer, error) {
	return getList[clinicmodels.Customer](ctx, c, "/api/customers", nil)
}

func (c *Client) GetCustomer(ctx context.Context, customerID int64) (*clinicmodels.Customer, error) {
	return getOne[clinicmodels.Customer](ctx, c, "/api/customers/"+itoa(customerID), nil)
}

func (c *Client) GetCustomerMe(ctx context.Context) (*clinicmodels.Customer, error) {
	return getOne[clinicmodels.Customer](ctx, c, "/api/customers/me", nil)
}

func (c *Client) GetCustomerByEmail(ctx context.Context, email string) (*clinicmodels.Customer, error) {
	return getOne[clinicmodels.Customer](ctx, c, "/api/customers/by-email", url.Values{"email": {email}})
}

func (c *Client) UpdateCustomer(ctx context.Context, customerID int64, cu *clinicmodels.Customer) (*clinicmodels.Customer, error) {
	var out clinicmodels.Customer
	if err := c.sendJSON(ctx, http.MethodPut, "/api/customers/update-no-avatar/"+itoa(customerID), cu, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCustomerWithAvatar sends a "customer" JSON part and an optional
// "avatar" file part.
func (c *Client) UpdateCustomerWithAvatar(ctx context.Context, customerID int64, cu *clinicmodels.Customer, avatar *File) (*clinicmodels.Customer, error) {
	form := NewForm().JSON("customer", cu).File("avatar", avatar)
	var out clinicmodels.Customer
	if err := c.sendForm(ctx, http.MethodPut, "/api/customers/"+itoa(customerID), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, customerID int64) error {
	return c.delete(ctx, "/api/customers/"+itoa(customerID))
}
