package models

type DashboardMetrics struct {
	EventsOrganized int     `json:"eventsOrganized"`
	TicketsIssued   int     `json:"ticketsIssued"`
	TicketsSold     int     `json:"ticketsSold"`
	ActiveEvents    int     `json:"activeEvents"`
	TicketsPending  int     `json:"ticketsPending"`
	TotalRevenue    float64 `json:"totalRevenue"`
}
