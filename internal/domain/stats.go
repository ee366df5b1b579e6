package domain

// PaymentTotals is the count and summed amount for one payment status.
type PaymentTotals struct {
	Count  int   `json:"count"`
	Amount int64 `json:"amount"`
}

type PaymentSummary struct {
	Paid     PaymentTotals `json:"paid"`
	Pending  PaymentTotals `json:"pending"`
	Refunded PaymentTotals `json:"refunded"`
}

func SummarizePayments(enrollments []Enrollment) PaymentSummary {
	var s PaymentSummary
	for _, e := range enrollments {
		var t *PaymentTotals
		switch e.PaymentStatus {
		case PaymentPaid:
			t = &s.Paid
		case PaymentPending:
			t = &s.Pending
		case PaymentRefunded:
			t = &s.Refunded
		default:
			continue
		}
		t.Count++
		t.Amount += e.Amount
	}
	return s
}

type EnrollmentCounts struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmed"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
}

func CountEnrollments(enrollments []Enrollment) EnrollmentCounts {
	c := EnrollmentCounts{Total: len(enrollments)}
	for _, e := range enrollments {
		switch e.Status {
		case EnrollmentConfirmed:
			c.Confirmed++
		case EnrollmentPending:
			c.Pending++
		case EnrollmentCancelled:
			c.Cancelled++
		}
	}
	return c
}

// ActiveEnrollments counts non-cancelled enrollments per session.
func ActiveEnrollments(enrollments []Enrollment) map[string]int {
	out := make(map[string]int)
	for _, e := range enrollments {
		if e.Status == EnrollmentCancelled {
			continue
		}
		out[e.SessionID]++
	}
	return out
}

// SessionStats is the admin view of one session's capacity. Consistent is
// true when the taken seats match the non-cancelled enrollments.
type SessionStats struct {
	Session      Session      `json:"session"`
	OfferingName string       `json:"bootcampTitle"`
	Enrolled     int          `json:"enrolled"`
	FillPercent  float64      `json:"fillPercent"`
	Participants []Enrollment `json:"participants"`
	Consistent   bool         `json:"consistent"`
}

func NewSessionStats(s Session, title string, enrollments []Enrollment) SessionStats {
	st := SessionStats{
		Session:      s,
		OfferingName: title,
		Enrolled:     s.Enrolled(),
		FillPercent:  s.FillPercent(),
		Participants: []Enrollment{},
	}
	active := 0
	for _, e := range enrollments {
		if e.SessionID != s.ID {
			continue
		}
		st.Participants = append(st.Participants, e)
		if e.Status != EnrollmentCancelled {
			active++
		}
	}
	st.Consistent = active == s.Enrolled()
	return st
}

type OfferingStats struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Level       Level   `json:"level"`
	Price       int64   `json:"price"`
	Enrollments int     `json:"enrollments"`
	Sessions    int     `json:"sessions"`
	Revenue     int64   `json:"revenue"`
	SpotsTotal  int     `json:"spotsTotal"`
	SpotsFilled int     `json:"spotsFilled"`
	FillRate    float64 `json:"fillRate"`
}

// NewOfferingStats aggregates sessions and enrollments of one offering.
// Revenue counts paid enrollments only.
func NewOfferingStats(o Offering, sessions []Session, enrollments []Enrollment) OfferingStats {
	st := OfferingStats{Slug: o.Slug, Title: o.Title, Level: o.Level, Price: o.Price}
	for _, s := range sessions {
		if s.OfferingSlug != o.Slug {
			continue
		}
		st.Sessions++
		st.SpotsTotal += s.SpotsTotal
		st.SpotsFilled += s.Enrolled()
	}
	for _, e := range enrollments {
		if e.OfferingSlug != o.Slug {
			continue
		}
		st.Enrollments++
		if e.PaymentStatus == PaymentPaid {
			st.Revenue += e.Amount
		}
	}
	if st.SpotsTotal > 0 {
		st.FillRate = float64(st.SpotsFilled) / float64(st.SpotsTotal) * 100
	}
	return st
}
