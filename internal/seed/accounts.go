package seed

import (
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

const (
	AdminID   = "admin-001"
	LearnerID = "user-001"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Users returns the back-office account (admin123) and the demo learner
// (user123).
func Users() []domain.User {
	created := day("2025-01-01")
	return []domain.User{
		{
			ID:            AdminID,
			Email:         "admin@bigfive.ci",
			Name:          "Admin Big Five",
			PasswordHash:  "$2b$10$LTkduduOxJv5/2r3xPwEwegjjUYFGr5erI00RrXgW3R8.N0iRBNxi",
			Role:          domain.RoleAdmin,
			Notifications: adminPrefs(),
			CreatedAt:     created,
			UpdatedAt:     created,
		},
		{
			ID:            LearnerID,
			Email:         "aminata.diallo@example.com",
			Name:          "Aminata Diallo",
			Phone:         "+225 07 12 34 56 78",
			PasswordHash:  "$2b$10$5DjnEeYkz/Dtkw9eyuKlleB4kl7PetqmpFhGgQ5wUlUcb8HsQ0Xly",
			Role:          domain.RoleUser,
			Notifications: domain.DefaultNotificationPrefs(),
			CreatedAt:     created,
			UpdatedAt:     created,
		},
	}
}

func adminPrefs() domain.NotificationPrefs {
	prefs := domain.DefaultNotificationPrefs()
	alerts := domain.DefaultAdminAlerts()
	prefs.Admin = &alerts
	return prefs
}

func enrollment(id, userID, name, email, phone, slug, session, at string, status domain.EnrollmentStatus, payment domain.PaymentStatus, amount int64) domain.Enrollment {
	return domain.Enrollment{
		ID:             id,
		UserID:         userID,
		UserName:       name,
		UserEmail:      email,
		UserPhone:      phone,
		OfferingSlug:   slug,
		SessionID:      session,
		EnrolledAt:     day(at),
		Status:         status,
		PaymentStatus:  payment,
		Amount:         amount,
		LearningStatus: domain.LearningNotStarted,
	}
}

func Enrollments() []domain.Enrollment {
	const (
		smm   = "social-media-management-avance"
		md    = "marketing-digital-fondamentaux"
		video = "creation-contenu-video"
	)
	confirmed, pending, cancelled := domain.EnrollmentConfirmed, domain.EnrollmentPending, domain.EnrollmentCancelled
	paid, unpaid, refunded := domain.PaymentPaid, domain.PaymentPending, domain.PaymentRefunded

	out := []domain.Enrollment{
		enrollment("enroll-001", LearnerID, "Aminata Diallo", "aminata.diallo@example.com", "+225 07 12 34 56 78", smm, "smm-mars-2025", "2025-02-15", confirmed, paid, 450000),
		enrollment("enroll-002", LearnerID, "Aminata Diallo", "aminata.diallo@example.com", "+225 07 12 34 56 78", md, "md-avril-2025", "2025-01-20", confirmed, paid, 350000),
		enrollment("enroll-003", "user-002", "Kouame Yao", "kouame.yao@email.com", "+225 05 98 76 54 32", smm, "smm-mars-2025", "2025-02-20", confirmed, paid, 450000),
		enrollment("enroll-004", "user-003", "Marie Kouassi", "marie.kouassi@orange.ci", "+225 01 23 45 67 89", video, "video-avril-2025", "2025-03-01", confirmed, paid, 300000),
		enrollment("enroll-005", "user-004", "Ibrahim Traore", "ibrahim.t@gmail.com", "+225 07 55 44 33 22", md, "md-avril-2025", "2025-03-05", pending, unpaid, 350000),
		enrollment("enroll-006", "user-005", "Fatou Bamba", "fatou.bamba@jumia.ci", "+225 01 11 22 33 44", smm, "smm-avril-2025", "2025-03-10", confirmed, paid, 450000),
		enrollment("enroll-007", "user-006", "Sekou Konate", "sekou.k@yahoo.fr", "+225 05 66 77 88 99", video, "video-avril-2025", "2025-03-12", cancelled, refunded, 300000),
		enrollment("enroll-008", "user-007", "Aissata Coulibaly", "aissata.c@outlook.com", "+225 07 99 88 77 66", smm, "smm-mai-2025", "2025-03-15", confirmed, paid, 450000),
		enrollment("enroll-009", "user-008", "Moussa Diarra", "moussa.d@gmail.com", "+225 05 12 34 56 78", video, "video-mai-2025", "2025-03-18", pending, unpaid, 300000),
		enrollment("enroll-010", "user-009", "Adjoua Koffi", "adjoua.k@entreprise.ci", "+225 01 55 66 77 88", md, "md-avril-2025", "2025-03-20", confirmed, paid, 350000),
		enrollment("enroll-011", LearnerID, "Aminata Diallo", "aminata.diallo@example.com", "+225 07 12 34 56 78", video, "video-mai-2025", "2025-03-01", confirmed, paid, 300000),
	}

	out[0].Progress = 75
	out[0].LearningStatus = domain.LearningInProgress
	out[1].Progress = 100
	out[1].LearningStatus = domain.LearningCompleted
	out[1].CertificateRequested = true
	out[1].CertificateIssued = true
	return out
}

// VideoProgress is the demo learner's watch history.
func VideoProgress() []domain.VideoProgress {
	at := day("2025-03-20")
	p := func(id string, seconds int, watched bool) domain.VideoProgress {
		return domain.VideoProgress{UserID: LearnerID, VideoID: id, WatchedSeconds: seconds, Watched: watched, UpdatedAt: at}
	}
	return []domain.VideoProgress{
		p("video-smm-1-1", 2700, true),
		p("video-smm-1-2", 2100, true),
		p("video-smm-1-3", 3000, true),
		p("video-smm-1-4", 1200, false),
		p("video-md-1-1", 2400, true),
		p("video-md-1-2", 3000, true),
	}
}

func Subscriptions() []domain.Subscription {
	plan, _ := domain.PlanByID(domain.PlanPremium)
	sub := domain.NewSubscription(LearnerID, plan, day("2025-01-01"))
	sub.ID = "sub-001"
	sub.EndDate = day("2026-01-01")
	return []domain.Subscription{sub}
}
