package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchProductsDefaultListing(t *testing.T) {
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[{"id":1,"title":"a","price":5,"stock":3}],"total":45,"skip":20,"limit":20}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(Options{BaseURL: ts.URL})
	page, err := c.FetchProducts(context.Background(), ListQuery{Page: 2})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if gotPath != "/" && gotPath != "" {
		t.Fatalf("默认列表不应带子路径，实际 %s", gotPath)
	}
	if gotQuery != "limit=20&skip=20" {
		t.Fatalf("期望 limit=20&skip=20，实际 %s", gotQuery)
	}
	if page.Total != 45 || !page.HasMore {
		t.Fatalf("skip=20 共 45 条时应还有下一页，实际 total=%d has_more=%v", page.Total, page.HasMore)
	}
}

func TestFetchProductsLastPageHasNoMore(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[{"id":41,"title":"x","price":1,"stock":1},{"id":42,"title":"y","price":1,"stock":1},{"id":43,"title":"z","price":1,"stock":1},{"id":44,"title":"w","price":1,"stock":1},{"id":45,"title":"v","price":1,"stock":1}],"total":45,"skip":40,"limit":20}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(Options{BaseURL: ts.URL})
	page, err := c.FetchProducts(context.Background(), ListQuery{Page: 3})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if page.HasMore {
		t.Fatal("最后一页不应还有下一页")
	}
}

func TestFetchProductsEndpointPrecedence(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[],"total":0,"skip":0,"limit":20}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(Options{BaseURL: ts.URL})

	if _, err := c.FetchProducts(context.Background(), ListQuery{Search: "phone"}); err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if paths[len(paths)-1] != "/search" {
		t.Fatalf("仅搜索时应走 /search，实际 %s", paths[len(paths)-1])
	}

	if _, err := c.FetchProducts(context.Background(), ListQuery{Category: "laptops", Search: "pro"}); err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	// 组合过滤：先走 category 端点，再补一次 search
	if paths[len(paths)-2] != "/category/laptops" || paths[len(paths)-1] != "/search" {
		t.Fatalf("组合过滤期望 [category search]，实际 %v", paths[len(paths)-2:])
	}
}

func TestFetchProductsSortParams(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[],"total":0,"skip":0,"limit":20}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(Options{BaseURL: ts.URL})
	if _, err := c.FetchProducts(context.Background(), ListQuery{SortBy: "price", Order: "desc"}); err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if gotQuery != "limit=20&skip=0&sortBy=price&order=desc" {
		t.Fatalf("排序参数错误: %s", gotQuery)
	}

	// 非白名单排序字段视为不排序
	if _, err := c.FetchProducts(context.Background(), ListQuery{SortBy: "hack"}); err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if gotQuery != "limit=20&skip=0" {
		t.Fatalf("非法排序字段不应带排序参数: %s", gotQuery)
	}
}

func TestFetchProductsCombinedFilterIntersection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/search" {
			w.Write([]byte(`{"products":[{"id":2,"title":"b","price":1,"stock":1},{"id":4,"title":"d","price":1,"stock":1},{"id":6,"title":"f","price":1,"stock":1}],"total":3,"skip":0,"limit":20}`))
			return
		}
		w.Write([]byte(`{"products":[{"id":1,"title":"a","price":1,"stock":1},{"id":2,"title":"b","price":1,"stock":1},{"id":3,"title":"c","price":1,"stock":1},{"id":4,"title":"d","price":1,"stock":1},{"id":5,"title":"e","price":1,"stock":1}],"total":5,"skip":0,"limit":20}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(Options{BaseURL: ts.URL})
	page, err := c.FetchProducts(context.Background(), ListQuery{Category: "x", Search: "y"})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(page.Products) != 2 || page.Products[0].ID != 2 || page.Products[1].ID != 4 {
		t.Fatalf("期望交集 [2 4]，实际 %+v", page.Products)
	}
	if page.Total != 2 {
		t.Fatalf("组合过滤 total 应为交集大小 2，实际 %d", page.Total)
	}
	if page.HasMore {
		t.Fatal("交集已全部返回，不应还有下一页")
	}
}

func TestFetchProductByIDNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(Options{BaseURL: ts.URL})
	if _, err := c.FetchProductByID(context.Background(), 9999); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("期望 ErrProductNotFound，实际 %v", err)
	}
}

func TestFetchProductByIDServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(Options{BaseURL: ts.URL})
	_, err := c.FetchProductByID(context.Background(), 1)
	if !IsNetworkError(err) {
		t.Fatalf("期望网络错误，实际 %v", err)
	}
	var ne *NetworkError
	if !errors.As(err, &ne) || ne.Status != http.StatusInternalServerError {
		t.Fatalf("期望携带状态码 500，实际 %+v", ne)
	}
}

func TestFetchCategoryList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/category-list" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["beauty","laptops"]`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(Options{BaseURL: ts.URL})
	categories, err := c.FetchCategoryList(context.Background())
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(categories) != 2 || categories[0] != "beauty" {
		t.Fatalf("分类列表错误: %v", categories)
	}
}

func TestNormalizeSortByWhitelist(t *testing.T) {
	if got := NormalizeSortBy("price"); got != "price" {
		t.Fatalf("price 应通过白名单，实际 %s", got)
	}
	if got := NormalizeSortBy("  rating "); got != "rating" {
		t.Fatalf("应去除空白，实际 %s", got)
	}
	if got := NormalizeSortBy("drop table"); got != "" {
		t.Fatalf("非白名单值应归一化为空，实际 %s", got)
	}
	if got := NormalizeOrder("DESC"); got != "desc" {
		t.Fatalf("期望 desc，实际 %s", got)
	}
	if got := NormalizeOrder("sideways"); got != "asc" {
		t.Fatalf("非法方向应回落 asc，实际 %s", got)
	}
}
