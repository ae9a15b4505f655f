package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/novalo/storefront/internal/core/domain"
)

type productPayload struct {
	ID                 string          `json:"_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Price              float64         `json:"price"`
	PriceAfterDiscount float64         `json:"priceAfterDiscount"`
	ImageCover         string          `json:"imageCover"`
	RatingsAverage     float64         `json:"ratingsAverage"`
	RatingsQuantity    int             `json:"ratingsQuantity"`
	Sold               int             `json:"sold"`
	Category           categoryPayload `json:"category"`
	Brand              categoryPayload `json:"brand"`
}

type categoryPayload struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

func (pp productPayload) toDomain() domain.Product {
	return domain.Product{
		ID:                 pp.ID,
		Title:              pp.Title,
		Description:        pp.Description,
		Price:              pp.Price,
		PriceAfterDiscount: pp.PriceAfterDiscount,
		ImageCover:         pp.ImageCover,
		RatingsAverage:     pp.RatingsAverage,
		RatingsQuantity:    pp.RatingsQuantity,
		Sold:               pp.Sold,
		Category:           domain.Category(pp.Category),
		Brand:              domain.Brand(pp.Brand),
	}
}

func (c *Client) Products(ctx context.Context, q domain.ProductQuery) ([]domain.Product, domain.Page, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	if q.Keyword != "" {
		query.Set("keyword", q.Keyword)
	}
	if q.CategoryID != "" {
		query.Set("category[in]", q.CategoryID)
	}
	if q.BrandID != "" {
		query.Set("brand", q.BrandID)
	}

	env, err := c.do(ctx, http.MethodGet, "/products", query, "", nil)
	if err != nil {
		return nil, domain.Page{}, err
	}

	var payload []productPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, domain.Page{}, fmt.Errorf("decode products payload: %w", err)
	}
	products := make([]domain.Product, 0, len(payload))
	for _, pp := range payload {
		products = append(products, pp.toDomain())
	}

	page := domain.Page{Results: env.Results}
	if env.Metadata != nil {
		page.Current = env.Metadata.CurrentPage
		page.PageSize = env.Metadata.Limit
		page.Pages = env.Metadata.NumberOfPages
	}
	return products, page, nil
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	env, err := c.do(ctx, http.MethodGet, "/products/"+id, nil, "", nil)
	if err != nil {
		return domain.Product{}, err
	}
	var pp productPayload
	if err := json.Unmarshal(env.Data, &pp); err != nil {
		return domain.Product{}, fmt.Errorf("decode product payload: %w", err)
	}
	return pp.toDomain(), nil
}

func (c *Client) categoryList(ctx context.Context, path string) ([]domain.Category, error) {
	env, err := c.do(ctx, http.MethodGet, path, nil, "", nil)
	if err != nil {
		return nil, err
	}
	var payload []categoryPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", path, err)
	}
	cats := make([]domain.Category, 0, len(payload))
	for _, cp := range payload {
		cats = append(cats, domain.Category(cp))
	}
	return cats, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	return c.categoryList(ctx, "/categories")
}

func (c *Client) Category(ctx context.Context, id string) (domain.Category, error) {
	env, err := c.do(ctx, http.MethodGet, "/categories/"+id, nil, "", nil)
	if err != nil {
		return domain.Category{}, err
	}
	var cp categoryPayload
	if err := json.Unmarshal(env.Data, &cp); err != nil {
		return domain.Category{}, fmt.Errorf("decode category payload: %w", err)
	}
	return domain.Category(cp), nil
}

func (c *Client) Subcategories(ctx context.Context, categoryID string) ([]domain.Category, error) {
	return c.categoryList(ctx, "/categories/"+categoryID+"/subcategories")
}

func (c *Client) Brands(ctx context.Context) ([]domain.Brand, error) {
	cats, err := c.categoryList(ctx, "/brands")
	if err != nil {
		return nil, err
	}
	brands := make([]domain.Brand, 0, len(cats))
	for _, cat := range cats {
		brands = append(brands, domain.Brand(cat))
	}
	return brands, nil
}

func (c *Client) Brand(ctx context.Context, id string) (domain.Brand, error) {
	env, err := c.do(ctx, http.MethodGet, "/brands/"+id, nil, "", nil)
	if err != nil {
		return domain.Brand{}, err
	}
	var cp categoryPayload
	if err := json.Unmarshal(env.Data, &cp); err != nil {
		return domain.Brand{}, fmt.Errorf("decode brand payload: %w", err)
	}
	return domain.Brand(cp), nil
}
