package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ahara/ahara/internal/domain/patient"
	"github.com/ahara/ahara/internal/platform/db"
)

func TestPatientCRUD(t *testing.T) {
	ctx := context.Background()
	clinicID := createClinic(t, ctx, "pat")
	svc := newServices(t).patients

	var created *patient.Patient
	t.Run("Create", func(t *testing.T) {
		err := withClinicConn(ctx, clinicID, func(ctx context.Context) error {
			created = createPatient(t, ctx, svc, "Meera Iyer")
			return nil
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.ID == uuid.Nil {
			t.Fatal("expected non-nil ID after create")
		}
		if created.CreatedAt.IsZero() {
			t.Error("expected created_at to be set")
		}
	})

	t.Run("GetByID", func(t *testing.T) {
		var fetched *patient.Patient
		err := withClinicConn(ctx, clinicID, func(ctx context.Context) error {
			var err error
			fetched, err = svc.GetPatient(ctx, created.ID)
			return err
		})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if fetched.Name != "Meera Iyer" || fetched.WeightKG == nil || *fetched.WeightKG != 60 {
			t.Errorf("unexpected patient: %+v", fetched)
		}
	})

	t.Run("Update", func(t *testing.T) {
		err := withClinicConn(ctx, clinicID, func(ctx context.Context) error {
			p, err := svc.GetPatient(ctx, created.ID)
			if err != nil {
				return err
			}
			p.Occupation = ptrStr("architect")
			p.WeightKG = ptrFloat(58.5)
			if err := svc.UpdatePatient(ctx, p); err != nil {
				return err
			}
			got, err := svc.GetPatient(ctx, created.ID)
			if err != nil {
				return err
			}
			if got.Occupation == nil || *got.Occupation != "architect" || *got.WeightKG != 58.5 {
				t.Errorf("update not persisted: %+v", got)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		err := withClinicConn(ctx, clinicID, func(ctx context.Context) error {
			createPatient(t, ctx, svc, "Arjun Nair")
			found, total, err := svc.ListPatients(ctx, patient.ListFilter{Query: "meera"}, 10, 0)
			if err != nil {
				return err
			}
			if total != 1 || len(found) != 1 || found[0].ID != created.ID {
				t.Errorf("expected only Meera, got total=%d %+v", total, found)
			}
			_, total, err = svc.ListPatients(ctx, patient.ListFilter{}, 1, 0)
			if err != nil {
				return err
			}
			if total != 2 {
				t.Errorf("expected total 2 regardless of page size, got %d", total)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		err := withClinicConn(ctx, clinicID, func(ctx context.Context) error {
			if err := svc.DeletePatient(ctx, created.ID); err != nil {
				return err
			}
			_, err := svc.GetPatient(ctx, created.ID)
			if !errors.Is(err, db.ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
			if err := svc.DeletePatient(ctx, created.ID); !errors.Is(err, db.ErrNotFound) {
				t.Errorf("expected ErrNotFound deleting twice, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
	})
}
