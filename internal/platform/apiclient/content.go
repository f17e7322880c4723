package apiclient

import (
	"context"
	"net/http"

	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

// Blog posts

func (c *Client) ListBlogPosts(ctx context.Context) ([]clinicmodels.BlogPost, error) {
	return getList[clinicmodels.BlogPost](ctx, c, "/api/blogposts", nil)
}

func (c *Client) GetBlogPost(ctx context.Context, postID int64) (*clinicmodels.BlogPost, error) {
	return getOne[clinicmodels.BlogPost](ctx, c, "/api/blogposts/"+itoa(postID), nil)
}

// CreateBlogPost sends a "blog" JSON part and an optional "image" file.
func (c *Client) CreateBlogPost(ctx context.Context, p *clinicmodels.BlogPost, image *File) (*clinicmodels.BlogPost, error) {
	form := NewForm().JSON("blog", p).File("image", image)
	var out clinicmodels.BlogPost
	if err := c.sendForm(ctx, http.MethodPost, "/api/blogposts", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBlogPost(ctx context.Context, postID int64, p *clinicmodels.BlogPost, image *File) (*clinicmodels.BlogPost, error) {
	form := NewForm().JSON("blog", p).File("image", image)
	var out clinicmodels.BlogPost
	if err := c.sendForm(ctx, http.MethodPut, "/api/blogposts/"+itoa(postID), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBlogPost(ctx context.Context, postID int64) error {
	return c.delete(ctx, "/api/blogposts/"+itoa(postID))
}

func (c *Client) ListBlogComments(ctx context.Context, postID int64) ([]clinicmodels.BlogComment, error) {
	return getList[clinicmodels.BlogComment](ctx, c, "/api/blog/"+itoa(postID)+"/comments", nil)
}

func (c *Client) AddBlogComment(ctx context.Context, postID int64, content string) (*clinicmodels.BlogComment, error) {
	var out clinicmodels.BlogComment
	body := map[string]string{"content": content}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/blog/"+itoa(postID)+"/comments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ratings

func (c *Client) ListRatings(ctx context.Context) ([]clinicmodels.Rating, error) {
	return getList[clinicmodels.Rating](ctx, c, "/api/rating", nil)
}

func (c *Client) SubmitRating(ctx context.Context, r *clinicmodels.Rating) (*clinicmodels.Rating, error) {
	var out clinicmodels.Rating
	body := map[string]interface{}{"star": r.Star, "doctorId": r.DoctorID, "comment": r.Comment}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/rating", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
