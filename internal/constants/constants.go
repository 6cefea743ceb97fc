package constants

// 商品列表排序字段常量
const (
	SortByNone               = ""
	SortByPrice              = "price"
	SortByRating             = "rating"
	SortByTitle              = "title"
	SortByDiscountPercentage = "discountPercentage"
	SortByStock              = "stock"
	SortByBrand              = "brand"
	SortByCategory           = "category"
)

// 排序方向常量
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// 商品可售状态常量（上游目录接口返回）
const (
	AvailabilityInStock  = "In Stock"
	AvailabilityLowStock = "Low Stock"
	AvailabilityOutStock = "Out of Stock"
)

// 购物车项新增语义常量
const (
	CartAddModeSet       = "set"       // 覆盖数量
	CartAddModeIncrement = "increment" // 已存在时数量 +1
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskCartRevalidate = "cart:revalidate"
)

// CartSchemaVersion 购物车持久化结构版本号
const CartSchemaVersion = 1
