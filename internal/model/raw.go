package model

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// FlexString aceita tanto string quanto número no JSON bruto ("4,7", 4.7, "1.234").
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// RawMenu is the scraped menu block: an external link and/or photo URLs.
type RawMenu struct {
	Link   *string  `json:"link"`
	Images []string `json:"images"`
}

type RawReview struct {
	Author string     `json:"author"`
	Rating FlexString `json:"rating"`
	Text   string     `json:"text"`
}

// RawImage é uma entrada de cafe_images: string simples ou objeto {image_url|url}.
// O formato original é mantido ao regravar o arquivo.
type RawImage struct {
	URL string
	raw json.RawMessage
}

func NewRawImage(url string) RawImage {
	return RawImage{URL: url}
}

func (i *RawImage) UnmarshalJSON(b []byte) error {
	i.raw = append(json.RawMessage(nil), b...)
	i.URL = ""

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		i.URL = s
		return nil
	}

	var obj struct {
		ImageURL string `json:"image_url"`
		URL      string `json:"url"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		i.URL = obj.ImageURL
		if i.URL == "" {
			i.URL = obj.URL
		}
	}
	return nil
}

func (i RawImage) MarshalJSON() ([]byte, error) {
	if len(i.raw) > 0 {
		return i.raw, nil
	}
	return json.Marshal(i.URL)
}

// RawCafe is one record of a region file, as written by the scraper.
// Keys not modelled here are kept in Extra and written back untouched, and a
// known key keeps its original encoding while its value is unchanged.
type RawCafe struct {
	Name            string
	Address         string
	Phone           string
	Rating          FlexString
	ReviewsCount    FlexString
	ReviewCount     FlexString // chave antiga "review_count"
	Category        string
	Link            string
	OpeningHours    []string
	Menu            *RawMenu
	CustomerReviews []RawReview
	CafeImages      []RawImage
	ImagesCleaned   bool

	Extra map[string]json.RawMessage

	// src guarda, por chave conhecida presente no arquivo, o JSON original e
	// o valor decodificado reencodado.
	src map[string]sourceField
}

type sourceField struct {
	raw     json.RawMessage
	decoded []byte
}

type rawCafeJSON struct {
	Name            string      `json:"name"`
	Address         string      `json:"address"`
	Phone           string      `json:"phone"`
	Rating          FlexString  `json:"rating"`
	ReviewsCount    FlexString  `json:"reviews_count"`
	ReviewCount     FlexString  `json:"review_count"`
	Category        string      `json:"category"`
	Link            string      `json:"link"`
	OpeningHours    []string    `json:"opening_hours"`
	Menu            *RawMenu    `json:"menu"`
	CustomerReviews []RawReview `json:"customer_reviews"`
	CafeImages      []RawImage  `json:"cafe_images"`
	ImagesCleaned   bool        `json:"images_cleaned"`
}

type rawField struct {
	key   string
	value any
	empty bool
}

// fields lists the known keys in file order. Empty values are left out on
// write unless the key was present when the record was read.
func (c RawCafe) fields() []rawField {
	return []rawField{
		{"name", c.Name, c.Name == ""},
		{"address", c.Address, c.Address == ""},
		{"phone", c.Phone, c.Phone == ""},
		{"rating", c.Rating, c.Rating == ""},
		{"reviews_count", c.ReviewsCount, c.ReviewsCount == ""},
		{"review_count", c.ReviewCount, c.ReviewCount == ""},
		{"category", c.Category, c.Category == ""},
		{"link", c.Link, c.Link == ""},
		{"opening_hours", c.OpeningHours, len(c.OpeningHours) == 0},
		{"menu", c.Menu, c.Menu == nil},
		{"customer_reviews", c.CustomerReviews, len(c.CustomerReviews) == 0},
		{"cafe_images", c.CafeImages, len(c.CafeImages) == 0},
		{"images_cleaned", c.ImagesCleaned, !c.ImagesCleaned},
	}
}

func (c *RawCafe) UnmarshalJSON(b []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}

	var known rawCafeJSON
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}

	*c = RawCafe{
		Name:            known.Name,
		Address:         known.Address,
		Phone:           known.Phone,
		Rating:          known.Rating,
		ReviewsCount:    known.ReviewsCount,
		ReviewCount:     known.ReviewCount,
		Category:        known.Category,
		Link:            known.Link,
		OpeningHours:    known.OpeningHours,
		Menu:            known.Menu,
		CustomerReviews: known.CustomerReviews,
		CafeImages:      known.CafeImages,
		ImagesCleaned:   known.ImagesCleaned,
	}

	for _, f := range c.fields() {
		raw, ok := all[f.key]
		if !ok {
			continue
		}
		decoded, err := json.Marshal(f.value)
		if err != nil {
			return err
		}
		if c.src == nil {
			c.src = make(map[string]sourceField)
		}
		c.src[f.key] = sourceField{raw: raw, decoded: decoded}
		delete(all, f.key)
	}
	if len(all) > 0 {
		c.Extra = all
	}
	return nil
}

func (c RawCafe) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, value []byte) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
	}

	for _, f := range c.fields() {
		cur, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		if src, ok := c.src[f.key]; ok {
			if bytes.Equal(cur, src.decoded) {
				cur = src.raw
			}
		} else if f.empty {
			continue
		}
		write(f.key, cur)
	}

	for _, k := range slices.Sorted(maps.Keys(c.Extra)) {
		write(k, c.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ReviewCountText returns whichever review count key the scraper filled in.
func (c RawCafe) ReviewCountText() string {
	if c.ReviewsCount != "" {
		return c.ReviewsCount.String()
	}
	return c.ReviewCount.String()
}

// AllImageURLs lists cafe_images and menu images, in file order.
func (c RawCafe) AllImageURLs() []string {
	var urls []string
	for _, img := range c.CafeImages {
		if img.URL != "" {
			urls = append(urls, img.URL)
		}
	}
	if c.Menu != nil {
		for _, u := range c.Menu.Images {
			if u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
