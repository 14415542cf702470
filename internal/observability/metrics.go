package observability

const (
	MCartOperations        MetricKey = "cart_operations_total"
	MCartOperationDuration MetricKey = "cart_operation_duration_seconds"
	MCheckoutRevenue       MetricKey = "checkout_revenue_total"
	MHTTPRequests          MetricKey = "http_requests_total"
	MHTTPRequestDuration   MetricKey = "http_request_duration_seconds"
)
