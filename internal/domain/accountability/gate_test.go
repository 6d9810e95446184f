package accountability

import (
	"errors"
	"testing"

	"github.com/citimr/aid-portal/internal/domain/entity"
)

func att(name string) *entity.Attachment {
	return &entity.Attachment{Name: name, Locator: "uploads/" + name}
}

func completePackage() Package {
	return Package{
		AttendanceCertificate:   att("certificado_participacao.pdf"),
		PresentationCertificate: att("certificado_apresentacao.pdf"),
		EventPhoto:              att("foto_evento.jpg"),
		Receipts:                []*entity.Attachment{att("nf_hotel.pdf"), att("nf_passagem.pdf")},
	}
}

func TestValidate_MissingSlots(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Package)
		wantMissing []string
	}{
		{
			name:        "missing photo",
			mutate:      func(p *Package) { p.EventPhoto = nil },
			wantMissing: []string{entity.SlotEventPhoto},
		},
		{
			name:        "missing receipts",
			mutate:      func(p *Package) { p.Receipts = nil },
			wantMissing: []string{entity.SlotReceipt},
		},
		{
			name: "missing certificates",
			mutate: func(p *Package) {
				p.AttendanceCertificate = nil
				p.PresentationCertificate = nil
			},
			wantMissing: []string{entity.SlotAttendanceCertificate, entity.SlotPresentationCertificate},
		},
		{
			name: "everything missing",
			mutate: func(p *Package) {
				*p = Package{}
			},
			wantMissing: []string{
				entity.SlotAttendanceCertificate,
				entity.SlotPresentationCertificate,
				entity.SlotEventPhoto,
				entity.SlotReceipt,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := completePackage()
			tt.mutate(&pkg)

			err := Validate(pkg)
			var incErr *IncompleteError
			if !errors.As(err, &incErr) {
				t.Fatalf("Validate() error = %v, want IncompleteError", err)
			}
			if len(incErr.Missing) != len(tt.wantMissing) {
				t.Fatalf("Missing = %v, want %v", incErr.Missing, tt.wantMissing)
			}
			for i, slot := range tt.wantMissing {
				if incErr.Missing[i] != slot {
					t.Errorf("Missing[%d] = %v, want %v", i, incErr.Missing[i], slot)
				}
			}
		})
	}
}

func TestValidate_Complete(t *testing.T) {
	if err := Validate(completePackage()); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestFinalize_OrderAndSlots(t *testing.T) {
	pkg := completePackage()

	docs, err := Finalize(pkg)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("len(docs) = %d, want 5", len(docs))
	}

	wantSlots := []string{
		entity.SlotAttendanceCertificate,
		entity.SlotPresentationCertificate,
		entity.SlotEventPhoto,
		entity.SlotReceipt,
		entity.SlotReceipt,
	}
	for i, slot := range wantSlots {
		if docs[i].Slot != slot {
			t.Errorf("docs[%d].Slot = %v, want %v", i, docs[i].Slot, slot)
		}
	}

	// Receipts keep submission order.
	if docs[3].Name != "nf_hotel.pdf" || docs[4].Name != "nf_passagem.pdf" {
		t.Errorf("receipts out of order: %s, %s", docs[3].Name, docs[4].Name)
	}
}

func TestFinalize_IncompleteReturnsNothing(t *testing.T) {
	pkg := completePackage()
	pkg.EventPhoto = nil

	docs, err := Finalize(pkg)
	if err == nil {
		t.Fatal("Finalize() error = nil, want IncompleteError")
	}
	if docs != nil {
		t.Errorf("Finalize() docs = %v, want nil", docs)
	}
}
