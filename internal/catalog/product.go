package catalog

import "github.com/fabocv/santi-pos/internal/pricing"

// Category groups products by counter section. Code prefixes follow the same
// scheme: 1xx pollo, 2xx vacuno, 3xx cerdo, 4xx embutidos, 5xx pavo.
type Category string

const (
	CategoryPollo     Category = "POLLO"
	CategoryVacuno    Category = "VACUNO"
	CategoryCerdo     Category = "CERDO"
	CategoryEmbutidos Category = "EMBUTIDOS"
	CategoryPavo      Category = "PAVO"
	CategoryMar       Category = "MAR"
	CategoryOtro      Category = "OTRO"
)

// Product is a catalog record priced per kilogram. Immutable once fetched;
// the code is the lookup key.
type Product struct {
	Code       string        `json:"code"`
	Name       string        `json:"name"`
	PricePerKg pricing.Money `json:"pricePerKg"`
	Category   Category      `json:"category"`
}

// Generic is the fallback product for unregistered merchandise.
var Generic = Product{
	Code:       "-1",
	Name:       "Sin registrar",
	PricePerKg: 1,
	Category:   CategoryOtro,
}

// Seed returns the preloaded butcher-shop catalog used until the upstream
// list is fetched.
func Seed() []Product {
	return []Product{
		{Code: "100", Name: "Trutro de Pollo", PricePerKg: 2990, Category: CategoryPollo},
		{Code: "101", Name: "Alitas de Pollo", PricePerKg: 3590, Category: CategoryPollo},
		{Code: "102", Name: "Patitas de Pollo", PricePerKg: 1500, Category: CategoryPollo},
		{Code: "103", Name: "Trutro Cuarto", PricePerKg: 2490, Category: CategoryPollo},
		{Code: "104", Name: "Pechuga Deshuesada", PricePerKg: 4990, Category: CategoryPollo},
		{Code: "105", Name: "Panita de Pollo", PricePerKg: 1890, Category: CategoryPollo},

		{Code: "200", Name: "Posta Paleta", PricePerKg: 8990, Category: CategoryVacuno},
		{Code: "201", Name: "Punta de Ganso", PricePerKg: 12990, Category: CategoryVacuno},
		{Code: "202", Name: "Entrecot", PricePerKg: 14990, Category: CategoryVacuno},
		{Code: "203", Name: "Costilla Centro", PricePerKg: 9990, Category: CategoryVacuno},

		{Code: "300", Name: "Chuleta Centro", PricePerKg: 4990, Category: CategoryCerdo},
		{Code: "301", Name: "Chuleta Vetada", PricePerKg: 5490, Category: CategoryCerdo},
		{Code: "302", Name: "Pulpa de Cerdo", PricePerKg: 4690, Category: CategoryCerdo},

		{Code: "400", Name: "Longaniza Chillán", PricePerKg: 7990, Category: CategoryEmbutidos},
		{Code: "401", Name: "Longaniza Oma Wurtz", PricePerKg: 8990, Category: CategoryEmbutidos},
		{Code: "402", Name: "Vienesas Pacel", PricePerKg: 3200, Category: CategoryEmbutidos},
	}
}
