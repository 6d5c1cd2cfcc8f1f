package order

// PrintSize is a purchasable print size.
type PrintSize struct {
	ID          string
	Label       string
	Description string
	Price       Money
}

// Product is an item a print can be placed on.
type Product struct {
	ID    string
	Label string
}

var printSizes = []PrintSize{
	{ID: "5x7", Label: `5" × 7"`, Description: "Perfect for framing", Price: NewMoney(999, "usd")},
	{ID: "8x10", Label: `8" × 10"`, Description: "Most popular size", Price: NewMoney(1499, "usd")},
	{ID: "11x14", Label: `11" × 14"`, Description: "Large display piece", Price: NewMoney(1999, "usd")},
	{ID: "16x20", Label: `16" × 20"`, Description: "Premium poster size", Price: NewMoney(2999, "usd")},
}

var products = []Product{
	{ID: "frame", Label: "Picture Frame"},
	{ID: "mug", Label: "Coffee Mug"},
	{ID: "tshirt", Label: "T-Shirt"},
	{ID: "thermos", Label: "Thermos"},
}

// shippingCost is a flat rate per order.
var shippingCost = NewMoney(499, "usd")

const (
	minQuantity = 1
	maxQuantity = 10

	defaultCountry = "US"
)

func findPrintSize(id string) (PrintSize, bool) {
	for _, s := range printSizes {
		if s.ID == id {
			return s, true
		}
	}
	return PrintSize{}, false
}

func findProduct(id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
