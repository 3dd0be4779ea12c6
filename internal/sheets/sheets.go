// Package sheets consolidates the community cafe spreadsheet into a single
// deduplicated list, one CSV export per tab.
package sheets

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"cafesync/internal/model"
)

const baseURL = "https://docs.google.com"

// Entry is one consolidated row.
type Entry struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
}

// Raw converts the entry to a region file record.
func (e Entry) Raw() model.RawCafe {
	return model.RawCafe{Name: e.Name, Address: e.Address, Phone: e.Phone, Category: e.Category}
}

type Client struct {
	Http    *resty.Client
	SheetID string
}

func NewClient(sheetID string) *Client {
	return &Client{
		Http:    resty.New().SetBaseURL(baseURL).SetTimeout(30 * time.Second),
		SheetID: sheetID,
	}
}

var gidPattern = regexp.MustCompile(`gid=(\d+)`)

// DiscoverGIDs lists the tab ids found on the spreadsheet's htmlview page.
func (c *Client) DiscoverGIDs(ctx context.Context) ([]string, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/spreadsheets/d/%s/htmlview", c.SheetID))
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("htmlview status %d", res.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, err
	}

	var gids []string
	doc.Find(`li[id^="sheet-button-"]`).Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		gids = append(gids, strings.TrimPrefix(id, "sheet-button-"))
	})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if m := gidPattern.FindStringSubmatch(href); m != nil {
			gids = append(gids, m[1])
		}
	})
	return uniq(gids), nil
}

// DownloadCSV fetches one tab as CSV.
func (c *Client) DownloadCSV(ctx context.Context, gid string) ([]byte, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"format": "csv", "gid": gid}).
		Get(fmt.Sprintf("/spreadsheets/d/%s/export", c.SheetID))
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("gid %s: status %d", gid, res.StatusCode())
	}
	return res.Body(), nil
}

type Result struct {
	Entries    []Entry
	Downloaded int
	Rows       int
	Duplicates int
}

// Consolidate downloads every gid (known plus discovered), keeps rows with
// both a name and an address and drops duplicates. Tabs that fail to download
// are skipped.
func (c *Client) Consolidate(ctx context.Context, known []string) (Result, error) {
	gids := append([]string(nil), known...)
	found, err := c.DiscoverGIDs(ctx)
	if err != nil {
		log.Printf("[Sheets] Não foi possível descobrir as abas: %v", err)
	}
	gids = uniq(append(gids, found...))
	if len(gids) == 0 {
		return Result{}, errors.New("no sheet gids to download")
	}

	var res Result
	var all []Entry
	for _, gid := range gids {
		body, err := c.DownloadCSV(ctx, gid)
		if err != nil {
			log.Printf("[Sheets] Falha ao baixar gid %s: %v", gid, err)
			continue
		}
		res.Downloaded++

		entries, err := ParseCSV(bytes.NewReader(body))
		if err != nil {
			log.Printf("[Sheets] CSV inválido no gid %s: %v", gid, err)
			continue
		}
		log.Printf("[Sheets] gid %s: %d linhas", gid, len(entries))
		all = append(all, entries...)
	}

	res.Rows = len(all)
	res.Entries, res.Duplicates = Dedupe(all)
	return res, nil
}

// ParseCSV reads a header row and keeps rows that have a name and an address.
// Headers from the different tabs are accepted: "Name Cafe", "Nama Cafe" or
// "Name", and "Address" or "Alamat".
func ParseCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := col[h]; !ok {
			col[h] = i
		}
	}
	get := func(rec []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(rec) && rec[i] != "" {
				return rec[i]
			}
		}
		return ""
	}

	var out []Entry
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}

		name := strings.TrimSpace(get(rec, "Name Cafe", "Nama Cafe", "Name"))
		address := strings.TrimSpace(get(rec, "Address", "Alamat"))
		if name == "" || address == "" {
			continue
		}
		out = append(out, Entry{
			Name:     name,
			Address:  address,
			Phone:    get(rec, "Phone"),
			Category: get(rec, "Type"),
		})
	}
	return out, nil
}

// DedupeKey is the lower-cased name plus the first 15 characters of the
// lower-cased address. Spelling variants of the same address collapse.
func DedupeKey(e Entry) string {
	addr := []rune(e.Address)
	if len(addr) > 15 {
		addr = addr[:15]
	}
	return strings.ToLower(e.Name) + "_" + strings.ToLower(string(addr))
}

// Dedupe keeps the first entry of every key, in input order.
func Dedupe(entries []Entry) ([]Entry, int) {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	dupes := 0
	for _, e := range entries {
		k := DedupeKey(e)
		if seen[k] {
			dupes++
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out, dupes
}

func WriteJSON(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	b, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func ReadJSON(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return entries, nil
}

func uniq(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
