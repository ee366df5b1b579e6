package crdb

import (
	"strings"
	"testing"

	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

func TestEnrollmentQuery(t *testing.T) {
	r := NewRepository(nil)

	sql, args, err := r.enrollmentQuery(domain.EnrollmentFilter{}).ToSql()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sql, "WHERE") || len(args) != 0 {
		t.Errorf("empty filter must not add conditions: %s %v", sql, args)
	}

	sql, args, err = r.enrollmentQuery(domain.EnrollmentFilter{
		Query:  " aminata ",
		Status: domain.EnrollmentConfirmed,
	}).ToSql()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"user_name ILIKE $1", "user_email ILIKE $2", "status = $3"} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in %s", want, sql)
		}
	}
	if len(args) != 3 || args[0] != "%aminata%" {
		t.Errorf("unexpected args %v", args)
	}
}
