package target

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Entity names as used in the Admin API paths.
const (
	EntityProduct                  = "product"
	EntityProductMedia             = "product-media"
	EntityProductVisibility        = "product-visibility"
	EntityMedia                    = "media"
	EntityMediaFolder              = "media-folder"
	EntityMediaFolderConfiguration = "media-folder-configuration"
	EntityCategory                 = "category"
	EntitySalesChannel             = "sales-channel"
	EntityTax                      = "tax"
	EntityCurrency                 = "currency"
	EntityLanguage                 = "language"
)

// NewID returns a fresh entity id in the target's format: a v4 UUID as 32 lowercase hex digits.
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// Filter is one search condition. Top-level filters are combined with AND.
type Filter struct {
	Type  string `json:"type"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Equals builds an exact-match filter.
func Equals(field string, value any) Filter {
	return Filter{Type: "equals", Field: field, Value: value}
}

// Criteria is the body of a search request.
type Criteria struct {
	Filter   []Filter            `json:"filter,omitempty"`
	Limit    int                 `json:"limit,omitempty"`
	Page     int                 `json:"page,omitempty"`
	Includes map[string][]string `json:"includes,omitempty"`

	// TotalCountMode 1 asks the server for an exact total instead of "next page exists".
	TotalCountMode int `json:"total-count-mode,omitempty"`
}

type searchResponse[T any] struct {
	Total int `json:"total"`
	Data  []T `json:"data"`
}

// ProductRef is the slice of a product the pager needs.
type ProductRef struct {
	ID            string `json:"id"`
	ProductNumber string `json:"productNumber"`
}

// ProductPage is one page of the product listing.
type ProductPage struct {
	Total    int
	Products []ProductRef
}

// SalesChannel is a storefront context.
type SalesChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MediaFolder groups uploaded media.
type MediaFolder struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ConfigurationID string `json:"configurationId,omitempty"`
}

// Media is an uploaded asset. FileName carries no extension.
type Media struct {
	ID            string `json:"id"`
	FileName      string `json:"fileName"`
	FileExtension string `json:"fileExtension"`
	Alt           string `json:"alt"`
	MediaFolderID string `json:"mediaFolderId,omitempty"`
}

// MediaCreate is the payload of an empty media shell awaiting an upload.
type MediaCreate struct {
	ID            string `json:"id"`
	MediaFolderID string `json:"mediaFolderId"`
	Alt           string `json:"alt,omitempty"`
}

// Category is a storefront category, keyed by name for this migration.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IDRef references an existing entity in an association list.
type IDRef struct {
	ID string `json:"id"`
}

// ProductMedia links a product to a media asset with a display position.
// Its id is distinct from the media id and is what a product's cover points at.
type ProductMedia struct {
	ID        string `json:"id"`
	ProductID string `json:"productId,omitempty"`
	MediaID   string `json:"mediaId"`
	Position  int    `json:"position"`
}

// ProductVisibility marks a product visible in one sales channel.
// A record without id is a creation request; the server assigns one.
type ProductVisibility struct {
	ID             string `json:"id,omitempty"`
	ProductID      string `json:"productId,omitempty"`
	SalesChannelID string `json:"salesChannelId"`
	Visibility     int    `json:"visibility"`
}

// Tax is a tax rule; rates are percentages.
type Tax struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	TaxRate float64 `json:"taxRate"`
}

// Currency is a target currency.
type Currency struct {
	ID      string `json:"id"`
	IsoCode string `json:"isoCode"`
}

// Language is a content language.
type Language struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Price is one currency price. Linked stays false so gross does not follow later net edits.
type Price struct {
	CurrencyID string  `json:"currencyId"`
	Net        float64 `json:"net"`
	Gross      float64 `json:"gross"`
	Linked     bool    `json:"linked"`
}

// Translation holds translated product texts. Nil fields are not sent, leaving the target value as is.
type Translation struct {
	Description     *string `json:"description,omitempty"`
	MetaTitle       *string `json:"metaTitle,omitempty"`
	MetaDescription *string `json:"metaDescription,omitempty"`
}

// ProductUpdate is the partial-update document applied to one product in a single PATCH.
// Optional associations are omitted when empty so existing target values stay untouched.
type ProductUpdate struct {
	ID           string                 `json:"id"`
	Active       bool                   `json:"active"`
	CustomFields map[string]any         `json:"customFields,omitempty"`
	Translations map[string]Translation `json:"translations,omitempty"`
	Media        []ProductMedia         `json:"media,omitempty"`
	CoverID      string                 `json:"coverId,omitempty"`
	Visibilities []ProductVisibility    `json:"visibilities,omitempty"`
	Price        []Price                `json:"price,omitempty"`
	TaxID        string                 `json:"taxId,omitempty"`
	Categories   []IDRef                `json:"categories,omitempty"`
}
