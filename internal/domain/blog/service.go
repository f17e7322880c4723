package blog

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/view"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

type API interface {
	ListBlogPosts(ctx context.Context) ([]clinicmodels.BlogPost, error)
	GetBlogPost(ctx context.Context, id int64) (*clinicmodels.BlogPost, error)
	CreateBlogPost(ctx context.Context, p *clinicmodels.BlogPost, image *apiclient.File) (*clinicmodels.BlogPost, error)
	UpdateBlogPost(ctx context.Context, id int64, p *clinicmodels.BlogPost, image *apiclient.File) (*clinicmodels.BlogPost, error)
	DeleteBlogPost(ctx context.Context, id int64) error
	ListBlogComments(ctx context.Context, postID int64) ([]clinicmodels.BlogComment, error)
	AddBlogComment(ctx context.Context, postID int64, content string) (*clinicmodels.BlogComment, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// Detail is a post with its comments.
type Detail struct {
	Post     *clinicmodels.BlogPost     `json:"post"`
	Comments []clinicmodels.BlogComment `json:"comments"`
}

func key(p clinicmodels.BlogPost) int64 { return p.BlogPostID }

var list = view.Config[clinicmodels.BlogPost]{
	Fields: func(p clinicmodels.BlogPost) []string { return []string{p.Title} },
}

func (s *Service) List(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.BlogPost], error) {
	return view.Load(ctx, key, list, p, s.api.ListBlogPosts)
}

// Get loads the post and its comments in parallel.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	var d Detail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Post, err = s.api.GetBlogPost(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.Comments, err = s.api.ListBlogComments(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.Comments == nil {
		d.Comments = []clinicmodels.BlogComment{}
	}
	return &d, nil
}

// Save creates (id 0) or updates a post. image may be nil.
func (s *Service) Save(ctx context.Context, id int64, p *clinicmodels.BlogPost, image *apiclient.File) (*clinicmodels.BlogPost, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	if err := httputil.Required("title", p.Title, "content", p.Content); err != nil {
		return nil, err
	}
	if id == 0 {
		p.BlogPostID = 0
		return s.api.CreateBlogPost(ctx, p, image)
	}
	p.BlogPostID = id
	return s.api.UpdateBlogPost(ctx, id, p, image)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.DeleteBlogPost(ctx, id)
}

func (s *Service) BulkDelete(ctx context.Context, ids []int64) (view.BulkResult[int64], error) {
	return view.DeleteEach(ctx, ids, s.api.DeleteBlogPost)
}

func (s *Service) Comment(ctx context.Context, postID int64, content string) (*clinicmodels.BlogComment, error) {
	content = strings.TrimSpace(content)
	if err := httputil.Required("content", content); err != nil {
		return nil, err
	}
	return s.api.AddBlogComment(ctx, postID, content)
}
