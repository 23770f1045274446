package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

// fakeFinder is a canned-answer CandidateFinder. Nil entries mean "no
// match"; non-nil errors simulate storage failures.
type fakeFinder struct {
	byCode     map[string]*ExistingCandidate
	byPassport map[string]*ExistingCandidate
	byName     map[string]*ExistingCandidate

	codeErr     error
	passportErr error
	nameErr     error

	passportCalls int
	nameCalls     int
}

func (f *fakeFinder) FindByReferenceCode(_ context.Context, code string) (*ExistingCandidate, error) {
	if f.codeErr != nil {
		return nil, f.codeErr
	}
	return f.byCode[code], nil
}

func (f *fakeFinder) FindByPassport(_ context.Context, passport string) (*ExistingCandidate, error) {
	f.passportCalls++
	if f.passportErr != nil {
		return nil, f.passportErr
	}
	return f.byPassport[passport], nil
}

func (f *fakeFinder) FindByFullName(_ context.Context, name string) (*ExistingCandidate, error) {
	f.nameCalls++
	if f.nameErr != nil {
		return nil, f.nameErr
	}
	return f.byName[name], nil
}

func testResolver(f *fakeFinder) *Resolver {
	return NewResolver(f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolve_ReferenceCodeWinsOverPassport(t *testing.T) {
	f := &fakeFinder{
		byCode:     map[string]*ExistingCandidate{"REF-1": {ID: 11, FullName: "Stored One"}},
		byPassport: map[string]*ExistingCandidate{"P123": {ID: 22, FullName: "Stored Two"}},
	}
	cv := &Candidate{
		RowNumber:      2,
		FullName:       "Row Name",
		ReferenceCode:  strPtr("REF-1"),
		PassportNumber: strPtr("P123"),
	}

	res := testResolver(f).Resolve(context.Background(), cv, NewPassportSet())
	if !res.IsDuplicate {
		t.Fatal("expected duplicate")
	}
	if res.ExistingID == nil || *res.ExistingID != 11 {
		t.Errorf("ExistingID = %v, want the reference-code match", res.ExistingID)
	}
	if f.passportCalls != 0 {
		t.Errorf("passport lookup ran %d times, want 0", f.passportCalls)
	}
}

func TestResolve_IntraBatchPassportCollision(t *testing.T) {
	f := &fakeFinder{}
	r := testResolver(f)
	seen := NewPassportSet()

	first := &Candidate{RowNumber: 2, FullName: "A", PassportNumber: strPtr("ab123")}
	if res := r.Resolve(context.Background(), first, seen); res.IsDuplicate {
		t.Fatalf("first row flagged: %+v", res)
	}

	// Same passport, different casing and padding.
	second := &Candidate{RowNumber: 3, FullName: "B", PassportNumber: strPtr(" AB123 ")}
	res := r.Resolve(context.Background(), second, seen)
	if !res.IsDuplicate {
		t.Fatal("expected intra-batch duplicate")
	}
	if res.ExistingID != nil {
		t.Errorf("ExistingID = %v, want nil for an in-file collision", res.ExistingID)
	}
}

func TestResolve_PassportStoreMatch(t *testing.T) {
	f := &fakeFinder{
		byPassport: map[string]*ExistingCandidate{"P9": {ID: 7, FullName: "Stored"}},
	}
	cv := &Candidate{RowNumber: 2, FullName: "Row", PassportNumber: strPtr("p9")}

	res := testResolver(f).Resolve(context.Background(), cv, NewPassportSet())
	if !res.IsDuplicate || res.ExistingID == nil || *res.ExistingID != 7 {
		t.Errorf("got %+v, want a store match with ID 7", res)
	}
}

func TestResolve_FailOpenOnStoreErrors(t *testing.T) {
	f := &fakeFinder{
		codeErr:     errors.New("pool exhausted"),
		passportErr: errors.New("pool exhausted"),
	}
	cv := &Candidate{
		RowNumber:      2,
		FullName:       "Row",
		ReferenceCode:  strPtr("REF-1"),
		PassportNumber: strPtr("P1"),
	}
	seen := NewPassportSet()

	res := testResolver(f).Resolve(context.Background(), cv, seen)
	if res.IsDuplicate {
		t.Fatalf("lookup errors must degrade to no-match, got %+v", res)
	}

	// The passport is still claimed, so a repeat within the same file is
	// caught without another store round trip.
	repeat := &Candidate{RowNumber: 3, FullName: "Row2", ReferenceCode: nil, PassportNumber: strPtr("P1")}
	res = testResolver(f).Resolve(context.Background(), repeat, seen)
	if !res.IsDuplicate || res.ExistingID != nil {
		t.Errorf("repeat row: got %+v, want an in-file collision", res)
	}
}

func TestResolve_FullNameOnlyWithoutPassport(t *testing.T) {
	f := &fakeFinder{
		byName: map[string]*ExistingCandidate{"Fatima Noor": {ID: 3, FullName: "Fatima Noor"}},
	}
	r := testResolver(f)

	// With a passport present, the name check never runs even when the
	// passport finds nothing.
	withPassport := &Candidate{RowNumber: 2, FullName: "Fatima Noor", PassportNumber: strPtr("P77")}
	if res := r.Resolve(context.Background(), withPassport, NewPassportSet()); res.IsDuplicate {
		t.Fatalf("got %+v, want no duplicate", res)
	}
	if f.nameCalls != 0 {
		t.Errorf("name lookup ran %d times, want 0", f.nameCalls)
	}

	// Without a passport the name is the last resort.
	withoutPassport := &Candidate{RowNumber: 3, FullName: "Fatima Noor"}
	res := r.Resolve(context.Background(), withoutPassport, NewPassportSet())
	if !res.IsDuplicate || res.ExistingID == nil || *res.ExistingID != 3 {
		t.Errorf("got %+v, want the full-name match", res)
	}
}

func TestResolve_NoSignalsNoDuplicate(t *testing.T) {
	cv := &Candidate{RowNumber: 2, FullName: "Unseen Person"}
	res := testResolver(&fakeFinder{}).Resolve(context.Background(), cv, NewPassportSet())
	if res.IsDuplicate {
		t.Errorf("got %+v, want no duplicate", res)
	}
}
