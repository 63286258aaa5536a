package sale

import "github.com/prometheus/client_golang/prometheus"

var (
	salesFinalized = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_finalized_total",
		Help: "Finalized sales grouped by payment method",
	}, []string{"method"})
	saleAmount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_sale_amount_total",
		Help: "Sum of finalized sale totals in pesos",
	})
)

func init() {
	prometheus.MustRegister(salesFinalized, saleAmount)
}

func observeSale(v Voucher) {
	salesFinalized.WithLabelValues(string(v.Method)).Inc()
	saleAmount.Add(float64(v.TotalToPay))
}
