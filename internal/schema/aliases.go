package schema

// Field is a canonical business column identity, independent of a
// dataset's raw header spelling.
type Field string

// Canonical fields recognized across datasets.
const (
	FieldDate     Field = "date"
	FieldQuantity Field = "quantity"
	FieldPrice    Field = "price"
	FieldCustomer Field = "customer"
	FieldProduct  Field = "product"
	FieldRegion   Field = "region"
	FieldCategory Field = "category"
	FieldProfit   Field = "profit"
	FieldCost     Field = "cost"
	FieldOrderID  Field = "order_id"
	FieldSales    Field = "sales"
	FieldStock    Field = "stock"
)

// AliasTable maps each canonical field to its accepted raw header
// spellings, in priority order. It is read-only configuration: build
// one with DefaultAliasTable (or a custom map) and inject it into a
// Resolver; never mutate it afterwards.
type AliasTable map[Field][]string

// DefaultAliasTable returns the stock alias configuration covering the
// header spellings seen across common sales exports. Alias order
// matters: the first alias that matches a raw header wins.
func DefaultAliasTable() AliasTable {
	return AliasTable{
		FieldDate:     {"order_date", "date", "orderdate", "transaction_date", "timestamp", "time", "order date", "ship date"},
		FieldQuantity: {"quantity", "qty", "units", "volume", "count", "amount"},
		FieldPrice:    {"derived_price", "price", "unitprice", "unit_price", "rate", "sales_amount", "revenue", "amount", "unit price"},
		FieldCustomer: {"customer", "customer_name", "customer name", "client", "buyer", "consumer", "user", "account"},
		FieldProduct:  {"product", "product_name", "product name", "item", "sku", "description", "material"},
		FieldRegion:   {"region", "city", "state", "location", "country", "territory", "area", "zone"},
		FieldCategory: {"category", "product_category", "type", "segment", "department", "group", "product category", "sub-category", "sub category"},
		FieldProfit:   {"profit", "margin", "net_income", "earnings"},
		FieldCost:     {"cost", "unit_cost", "buying_price", "purchase_price", "unit cost"},
		FieldOrderID:  {"order_id", "orderid", "id", "order_no", "invoice_no", "invoice", "order id", "row id"},
		FieldSales:    {"sales", "revenue", "total_sales", "amount", "total", "total sales"},
		FieldStock:    {"stock", "current_stock", "quantity_in_stock", "inventory"},
	}
}
