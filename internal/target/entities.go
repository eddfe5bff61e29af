package target

import (
	"context"
)

// ListProducts returns one page (1-based) of product ids and numbers,
// together with the exact catalog total.
func (c *Client) ListProducts(ctx context.Context, page, limit int) (*ProductPage, error) {
	var products []ProductRef
	total, err := c.Search(ctx, EntityProduct, Criteria{
		Limit:          limit,
		Page:           page,
		TotalCountMode: 1,
		Includes:       map[string][]string{EntityProduct: {"id", "productNumber"}},
	}, &products)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Total: total, Products: products}, nil
}

// FindSalesChannel looks a sales channel up by exact name.
func (c *Client) FindSalesChannel(ctx context.Context, name string) (*SalesChannel, error) {
	return findOne[SalesChannel](ctx, c, EntitySalesChannel, name, Equals("name", name))
}

// FindMediaFolder looks a media folder up by exact name.
func (c *Client) FindMediaFolder(ctx context.Context, name string) (*MediaFolder, error) {
	return findOne[MediaFolder](ctx, c, EntityMediaFolder, name, Equals("name", name))
}

// DefaultMediaFolderConfiguration returns the id of the first media folder configuration.
func (c *Client) DefaultMediaFolderConfiguration(ctx context.Context) (string, error) {
	cfg, err := findOne[IDRef](ctx, c, EntityMediaFolderConfiguration, "default")
	if err != nil {
		return "", err
	}
	return cfg.ID, nil
}

// CreateMediaFolder creates a folder inheriting its parent's configuration and returns its id.
func (c *Client) CreateMediaFolder(ctx context.Context, name, configurationID string) (string, error) {
	id := NewID()
	err := c.Create(ctx, EntityMediaFolder, map[string]any{
		"id":                     id,
		"name":                   name,
		"configurationId":        configurationID,
		"useParentConfiguration": true,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// FindMedia looks an asset up by file name (without extension) and extension.
func (c *Client) FindMedia(ctx context.Context, fileName, extension string) (*Media, error) {
	return findOne[Media](ctx, c, EntityMedia, fileName+"."+extension,
		Equals("fileName", fileName),
		Equals("fileExtension", extension))
}

// FindMediaShell returns a media record in folderID that never received a
// file, left behind by an upload that failed after the shell was created.
func (c *Client) FindMediaShell(ctx context.Context, folderID string) (*Media, error) {
	return findOne[Media](ctx, c, EntityMedia, "empty shell in folder "+folderID,
		Equals("mediaFolderId", folderID),
		Equals("fileName", nil))
}

// CreateMedia creates an empty media shell awaiting an upload.
func (c *Client) CreateMedia(ctx context.Context, m MediaCreate) error {
	return c.Create(ctx, EntityMedia, m)
}

// UpdateMediaAlt rewrites the alt text of an existing asset.
func (c *Client) UpdateMediaAlt(ctx context.Context, id, alt string) error {
	return c.Update(ctx, EntityMedia, id, map[string]string{"id": id, "alt": alt})
}

// FindCategory looks a category up by exact name.
func (c *Client) FindCategory(ctx context.Context, name string) (*Category, error) {
	return findOne[Category](ctx, c, EntityCategory, name, Equals("name", name))
}

// CreateCategory creates a category with the given id.
func (c *Client) CreateCategory(ctx context.Context, id, name string) error {
	return c.Create(ctx, EntityCategory, Category{ID: id, Name: name})
}

// ProductMedia returns every media link of a product.
func (c *Client) ProductMedia(ctx context.Context, productID string) ([]ProductMedia, error) {
	var links []ProductMedia
	if _, err := c.Search(ctx, EntityProductMedia, Criteria{
		Filter: []Filter{Equals("productId", productID)},
	}, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// ProductVisibilities returns every visibility record of a product.
func (c *Client) ProductVisibilities(ctx context.Context, productID string) ([]ProductVisibility, error) {
	var records []ProductVisibility
	if _, err := c.Search(ctx, EntityProductVisibility, Criteria{
		Filter: []Filter{Equals("productId", productID)},
	}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Taxes returns all tax rules.
func (c *Client) Taxes(ctx context.Context) ([]Tax, error) {
	var taxes []Tax
	if _, err := c.Search(ctx, EntityTax, Criteria{Limit: 500}, &taxes); err != nil {
		return nil, err
	}
	return taxes, nil
}

// FindCurrency looks a currency up by ISO 4217 code.
func (c *Client) FindCurrency(ctx context.Context, isoCode string) (*Currency, error) {
	return findOne[Currency](ctx, c, EntityCurrency, isoCode, Equals("isoCode", isoCode))
}

// FindLanguageByLocale looks a language up by its locale code, e.g. "de-DE".
func (c *Client) FindLanguageByLocale(ctx context.Context, code string) (*Language, error) {
	return findOne[Language](ctx, c, EntityLanguage, code, Equals("locale.code", code))
}

// UpdateProduct applies the merged partial update for one product.
func (c *Client) UpdateProduct(ctx context.Context, u *ProductUpdate) error {
	return c.Update(ctx, EntityProduct, u.ID, u)
}
