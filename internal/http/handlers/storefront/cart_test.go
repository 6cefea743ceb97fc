package storefront

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, stocks map[uint]int) (*gin.Engine, *cart.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id uint
		if _, err := fmt.Sscanf(r.URL.Path, "/%d", &id); err != nil {
			http.NotFound(w, r)
			return
		}
		stock, ok := stocks[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%d,"title":"item-%d","price":2.50,"stock":%d}`, id, id, stock)
	}))
	t.Cleanup(ts.Close)

	client := catalog.NewClient(catalog.Options{BaseURL: ts.URL})
	store := cart.NewStore(nil)
	container := &provider.Container{
		CatalogClient:  client,
		CartStore:      store,
		ProductService: service.NewProductService(client, 0),
		CartService:    service.NewCartService(store, client, nil),
	}
	handler := New(container)

	r := gin.New()
	r.POST("/cart/items", handler.AddCartItem)
	r.GET("/cart/summary", handler.GetCartSummary)
	r.DELETE("/cart/items/:product_id", handler.DeleteCartItem)
	r.POST("/cart/items/:product_id/decrease", handler.DecreaseCartItem)
	return r, store
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) envelope {
	t.Helper()
	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestAddCartItemEndpoint(t *testing.T) {
	r, store := newTestRouter(t, map[uint]int{1: 10})

	resp := doJSON(t, r, http.MethodPost, "/cart/items", `{"product_id":1,"quantity":3}`)
	if resp.StatusCode != 0 {
		t.Fatalf("期望成功，实际 status_code=%d msg=%s", resp.StatusCode, resp.Msg)
	}
	if got, _ := store.Quantity(1); got != 3 {
		t.Fatalf("期望数量 3，实际 %d", got)
	}
}

func TestAddCartItemUnknownProductReturns404Code(t *testing.T) {
	r, _ := newTestRouter(t, map[uint]int{1: 10})

	resp := doJSON(t, r, http.MethodPost, "/cart/items", `{"product_id":99,"quantity":1}`)
	if resp.StatusCode != 404 {
		t.Fatalf("期望 status_code=404，实际 %d", resp.StatusCode)
	}
}

func TestCartSummaryEndpoint(t *testing.T) {
	r, store := newTestRouter(t, map[uint]int{1: 10})
	_ = doJSON(t, r, http.MethodPost, "/cart/items", `{"product_id":1,"quantity":2}`)

	resp := doJSON(t, r, http.MethodGet, "/cart/summary", "")
	var data struct {
		TotalItems int    `json:"total_items"`
		TotalPrice string `json:"total_price"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("解析数据失败: %v", err)
	}
	if data.TotalItems != 2 {
		t.Fatalf("期望总件数 2，实际 %d", data.TotalItems)
	}
	if data.TotalPrice != "5.00" {
		t.Fatalf("期望总价 5.00，实际 %s", data.TotalPrice)
	}
	if got, _ := store.Quantity(1); got != 2 {
		t.Fatalf("期望数量 2，实际 %d", got)
	}
}

func TestDecreaseToZeroRemovesViaEndpoint(t *testing.T) {
	r, store := newTestRouter(t, map[uint]int{1: 10})
	_ = doJSON(t, r, http.MethodPost, "/cart/items", `{"product_id":1,"quantity":1}`)

	resp := doJSON(t, r, http.MethodPost, "/cart/items/1/decrease", "")
	var data struct {
		Removed bool `json:"removed"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("解析数据失败: %v", err)
	}
	if !data.Removed {
		t.Fatal("减到 0 应标记已移除")
	}
	if _, ok := store.Quantity(1); ok {
		t.Fatal("减到 0 后商品不应仍在购物车")
	}
}

func TestDeleteAbsentItemIsNoop(t *testing.T) {
	r, _ := newTestRouter(t, map[uint]int{1: 10})

	resp := doJSON(t, r, http.MethodDelete, "/cart/items/42", "")
	if resp.StatusCode != 0 {
		t.Fatalf("移除不存在的商品应为无操作成功，实际 status_code=%d", resp.StatusCode)
	}
}
