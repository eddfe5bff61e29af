package reconcile

import (
	"context"

	"github.com/agentstation/catalogbridge/internal/legacy"
	"github.com/agentstation/catalogbridge/internal/target"
)

// ProductLister pages through the target catalog.
type ProductLister interface {
	ListProducts(ctx context.Context, page, limit int) (*target.ProductPage, error)
}

// MediaAPI is what media deduplication needs from the target.
type MediaAPI interface {
	FindMedia(ctx context.Context, fileName, extension string) (*target.Media, error)
	FindMediaShell(ctx context.Context, folderID string) (*target.Media, error)
	CreateMedia(ctx context.Context, m target.MediaCreate) error
	UpdateMediaAlt(ctx context.Context, id, alt string) error
	UploadFromURL(ctx context.Context, mediaID, fileName, extension, sourceURL string) error
}

// CategoryAPI is what category resolution needs from the target.
type CategoryAPI interface {
	FindCategory(ctx context.Context, name string) (*target.Category, error)
	CreateCategory(ctx context.Context, id, name string) error
}

// TargetAPI is the full set of target operations a migration run uses.
// *target.Client implements it.
type TargetAPI interface {
	ProductLister
	MediaAPI
	CategoryAPI

	FindSalesChannel(ctx context.Context, name string) (*target.SalesChannel, error)
	FindMediaFolder(ctx context.Context, name string) (*target.MediaFolder, error)
	DefaultMediaFolderConfiguration(ctx context.Context) (string, error)
	CreateMediaFolder(ctx context.Context, name, configurationID string) (string, error)
	FindCurrency(ctx context.Context, isoCode string) (*target.Currency, error)
	FindLanguageByLocale(ctx context.Context, code string) (*target.Language, error)
	Taxes(ctx context.Context) ([]target.Tax, error)

	ProductMedia(ctx context.Context, productID string) ([]target.ProductMedia, error)
	ProductVisibilities(ctx context.Context, productID string) ([]target.ProductVisibility, error)
	UpdateProduct(ctx context.Context, u *target.ProductUpdate) error
}

// SourceAPI is the legacy catalog. *legacy.Client implements it.
type SourceAPI interface {
	Lookup(ctx context.Context, articleNumber string) (*legacy.Product, error)
	Media(ctx context.Context, id int) (*legacy.Media, error)
	BaseOrigin() string
}

var (
	_ TargetAPI = (*target.Client)(nil)
	_ SourceAPI = (*legacy.Client)(nil)
)
