package legacy

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/catalogbridge/internal/utils/ptr"
)

// Product is a legacy article reduced to what the migration reads.
// Nil text fields were absent or null in the source.
type Product struct {
	ArticleNumber   string
	Name            string
	Description     *string
	MetaTitle       *string
	MetaDescription *string
	Active          bool
	Images          []Image
	Categories      []string

	// TaxRate is a percentage; nil when the article carries no tax record.
	TaxRate *float64
	// NetPrice is the first main-detail price; nil when none is set.
	NetPrice *float64

	// Attributes merges article-level and main-detail free text fields,
	// the latter winning on conflicts.
	Attributes map[string]any
}

// Image references a legacy media record in display order.
type Image struct {
	MediaID     int
	Position    int
	Description string
}

// Media is a legacy media record.
type Media struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
	Extension   string `json:"extension"`
}

type envelope[T any] struct {
	Data    T    `json:"data"`
	Success bool `json:"success"`
}

type rawArticle struct {
	ID              int            `json:"id"`
	Name            string         `json:"name"`
	Description     *string        `json:"description"`
	DescriptionLong *string        `json:"descriptionLong"`
	MetaTitle       *string        `json:"metaTitle"`
	MetaDescription *string        `json:"metaDescription"`
	Active          bool           `json:"active"`
	Images          []rawImage     `json:"images"`
	Categories      rawCategories  `json:"categories"`
	Tax             *rawTax        `json:"tax"`
	MainDetail      *rawDetail     `json:"mainDetail"`
	Attribute       map[string]any `json:"attribute"`
}

type rawDetail struct {
	Number    string         `json:"number"`
	Images    []rawImage     `json:"images"`
	Prices    []rawPrice     `json:"prices"`
	Attribute map[string]any `json:"attribute"`
}

type rawImage struct {
	MediaID     flexInt `json:"mediaId"`
	Position    int     `json:"position"`
	Description string  `json:"description"`
}

type rawTax struct {
	Tax  flexFloat `json:"tax"`
	Name string    `json:"name"`
}

type rawPrice struct {
	CustomerGroupKey string    `json:"customerGroupKey"`
	Price            flexFloat `json:"price"`
}

type rawCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// rawCategories accepts both a list and an id-keyed object of categories.
type rawCategories []rawCategory

func (c *rawCategories) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if data[0] == '[' {
		var list []rawCategory
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*c = list
		return nil
	}

	var keyed map[string]rawCategory
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	list := make([]rawCategory, 0, len(keyed))
	for _, k := range keys {
		list = append(list, keyed[k])
	}
	*c = list
	return nil
}

// flexFloat decodes a JSON number or numeric string. Null and empty strings leave it unset.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return err
	}
	f.Value, f.Valid = v, true
	return nil
}

// flexInt decodes a JSON integer or numeric string; anything else is zero.
type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*i = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*i = flexInt(v)
	return nil
}

// normalize turns the raw article into a Product.
func (a *rawArticle) normalize(articleNumber string) *Product {
	p := &Product{
		ArticleNumber:   articleNumber,
		Name:            a.Name,
		MetaTitle:       a.MetaTitle,
		MetaDescription: a.MetaDescription,
		Active:          a.Active,
		Attributes:      map[string]any{},
	}

	switch {
	case a.DescriptionLong != nil && *a.DescriptionLong != "":
		p.Description = a.DescriptionLong
	case a.Description != nil && *a.Description != "":
		p.Description = a.Description
	}

	images := a.Images
	if len(images) == 0 && a.MainDetail != nil {
		images = a.MainDetail.Images
	}
	for _, img := range images {
		p.Images = append(p.Images, Image{
			MediaID:     int(img.MediaID),
			Position:    img.Position,
			Description: img.Description,
		})
	}

	for _, c := range a.Categories {
		p.Categories = append(p.Categories, c.Name)
	}

	if a.Tax != nil && a.Tax.Tax.Valid {
		p.TaxRate = ptr.To(a.Tax.Tax.Value)
	}

	for k, v := range a.Attribute {
		p.Attributes[k] = v
	}
	if a.MainDetail != nil {
		if len(a.MainDetail.Prices) > 0 && a.MainDetail.Prices[0].Price.Valid {
			p.NetPrice = ptr.To(a.MainDetail.Prices[0].Price.Value)
		}
		for k, v := range a.MainDetail.Attribute {
			p.Attributes[k] = v
		}
	}
	return p
}
