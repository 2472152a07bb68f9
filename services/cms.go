package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/kento-cell/MyHobbyCoffee/recommender"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

const (
	DefaultMenuLimit   = 100
	DefaultMenuOrders  = "-publishedAt"
	RecommendedLimit   = 3
	DefaultBaseGram    = 100
	NoImagePlaceholder = "/no_image.jpg"

	blogListFields   = "id,title,eyecatch"
	blogDetailFields = "id,title,content,eyecatch,category,publishedAt"
)

// Number accepts a JSON number or a numeric string. Anything else leaves it invalid.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// StringList accepts a single string or an array of scalars.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = StringList{single}
		}
		return nil
	}

	var many []interface{}
	if err := json.Unmarshal(data, &many); err != nil {
		*l = nil
		return nil
	}
	out := make(StringList, 0, len(many))
	for _, v := range many {
		if v == nil {
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	*l = out
	return nil
}

func (l StringList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type MenuItem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Image         *Image     `json:"image,omitempty"`
	Roast         StringList `json:"roast"`
	Origin        string     `json:"origin,omitempty"`
	Process       string     `json:"process,omitempty"`
	Description   string     `json:"description,omitempty"`
	Price         Number     `json:"price"`
	Amount        Number     `json:"amount"`
	IsRecommended bool       `json:"isRecommended"`
	WeightOptions StringList `json:"weightOptions,omitempty"`
	Acidity       Number     `json:"acidity"`
	Bitterness    Number     `json:"bitterness"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
}

// BasePrice is the price in yen for BaseGram grams. Non-numeric prices are 0.
func (m MenuItem) BasePrice() int64 {
	if !m.Price.Valid || m.Price.Value < 0 {
		return 0
	}
	return int64(math.Round(m.Price.Value))
}

// BaseGram is the weight the price refers to, defaulting to 100g.
func (m MenuItem) BaseGram() int {
	if !m.Amount.Valid || m.Amount.Value <= 0 {
		return DefaultBaseGram
	}
	return int(math.Round(m.Amount.Value))
}

func (m MenuItem) ImageURL() string {
	if m.Image == nil || m.Image.URL == "" {
		return NoImagePlaceholder
	}
	return m.Image.URL
}

// Bean converts the menu entry into a recommender candidate.
func (m MenuItem) Bean() recommender.Bean {
	notes := m.Description
	if notes == "" && len(m.WeightOptions) > 0 {
		notes = strings.Join(m.WeightOptions, ", ")
	}
	return recommender.Bean{
		ID:         m.ID,
		Name:       m.Name,
		Roast:      m.Roast.First(),
		Acidity:    m.Acidity.Ptr(),
		Bitterness: m.Bitterness.Ptr(),
		Notes:      notes,
	}
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BlogEntry struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Eyecatch    *Image     `json:"eyecatch,omitempty"`
	Category    *Category  `json:"category,omitempty"`
}

type TopBackground struct {
	ID    string `json:"id"`
	Image *Image `json:"image,omitempty"`
}

type MenuList struct {
	Contents   []MenuItem `json:"contents"`
	TotalCount int        `json:"totalCount"`
	Offset     int        `json:"offset"`
	Limit      int        `json:"limit"`
}

type BlogList struct {
	Contents   []BlogEntry `json:"contents"`
	TotalCount int         `json:"totalCount"`
	Offset     int         `json:"offset"`
	Limit      int         `json:"limit"`
}

type TopBackgroundList struct {
	Contents   []TopBackground `json:"contents"`
	TotalCount int             `json:"totalCount"`
	Offset     int             `json:"offset"`
	Limit      int             `json:"limit"`
}

// ListQuery maps onto the CMS list query parameters. Zero values are omitted.
type ListQuery struct {
	Limit   int
	Offset  int
	Orders  string
	Filters string
	Fields  string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Orders != "" {
		v.Set("orders", q.Orders)
	}
	if q.Filters != "" {
		v.Set("filters", q.Filters)
	}
	if q.Fields != "" {
		v.Set("fields", q.Fields)
	}
	return v
}

// MenuSource is the part of the CMS that checkout and the recommender read.
type MenuSource interface {
	ListMenu(ctx context.Context, q ListQuery) (*MenuList, error)
	GetMenu(ctx context.Context, id string) (*MenuItem, error)
}

// CMSClient reads content from microCMS. An unconfigured client logs a
// warning and serves empty lists.
type CMSClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewCMSClient(serviceDomain, apiKey string) *CMSClient {
	baseURL := ""
	if serviceDomain != "" {
		baseURL = fmt.Sprintf("https://%s.microcms.io/api/v1", serviceDomain)
	}
	return NewCMSClientWithBaseURL(baseURL, apiKey, nil)
}

func NewCMSClientWithBaseURL(baseURL, apiKey string, httpClient *http.Client) *CMSClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &CMSClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (c *CMSClient) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

func (c *CMSClient) get(ctx context.Context, endpoint, id string, q ListQuery, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	u := c.baseURL + "/" + endpoint
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	if qs := q.values().Encode(); qs != "" {
		u += "?" + qs
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("X-MICROCMS-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cms %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cms %s: status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("cms %s: decode: %w", endpoint, err)
	}
	return nil
}

func (c *CMSClient) warnUnconfigured(endpoint string) {
	utils.InfoLogger.Warnf("microCMS is not configured; returning empty %s", endpoint)
}

func (c *CMSClient) ListMenu(ctx context.Context, q ListQuery) (*MenuList, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultMenuLimit
	}
	if q.Orders == "" {
		q.Orders = DefaultMenuOrders
	}

	var list MenuList
	if err := c.get(ctx, "menu", "", q, &list); err != nil {
		if err == ErrNotConfigured {
			c.warnUnconfigured("menu")
			return &MenuList{Contents: []MenuItem{}}, nil
		}
		return nil, err
	}
	if list.Contents == nil {
		list.Contents = []MenuItem{}
	}
	return &list, nil
}

func (c *CMSClient) ListRecommended(ctx context.Context) (*MenuList, error) {
	return c.ListMenu(ctx, ListQuery{
		Limit:   RecommendedLimit,
		Orders:  DefaultMenuOrders,
		Filters: "isRecommended[equals]true",
	})
}

func (c *CMSClient) GetMenu(ctx context.Context, id string) (*MenuItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	var item MenuItem
	if err := c.get(ctx, "menu", id, ListQuery{}, &item); err != nil {
		if err == ErrNotConfigured {
			c.warnUnconfigured("menu item")
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (c *CMSClient) ListBlogs(ctx context.Context, q ListQuery) (*BlogList, error) {
	if q.Fields == "" {
		q.Fields = blogListFields
	}

	var list BlogList
	if err := c.get(ctx, "blogs", "", q, &list); err != nil {
		if err == ErrNotConfigured {
			c.warnUnconfigured("blogs")
			return &BlogList{Contents: []BlogEntry{}}, nil
		}
		return nil, err
	}
	if list.Contents == nil {
		list.Contents = []BlogEntry{}
	}
	return &list, nil
}

func (c *CMSClient) GetBlog(ctx context.Context, id string) (*BlogEntry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	var entry BlogEntry
	if err := c.get(ctx, "blogs", id, ListQuery{Fields: blogDetailFields}, &entry); err != nil {
		if err == ErrNotConfigured {
			c.warnUnconfigured("blog")
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (c *CMSClient) ListTopBackgrounds(ctx context.Context) (*TopBackgroundList, error) {
	var list TopBackgroundList
	if err := c.get(ctx, "top-background", "", ListQuery{}, &list); err != nil {
		if err == ErrNotConfigured {
			c.warnUnconfigured("top-background")
			return &TopBackgroundList{Contents: []TopBackground{}}, nil
		}
		return nil, err
	}
	if list.Contents == nil {
		list.Contents = []TopBackground{}
	}
	return &list, nil
}
