package policy

import (
	"testing"

	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

func strPtr(s string) *string { return &s }

func testUsers() (owner, granted, writer, stranger *entity.User) {
	owner = &entity.User{ID: 1, Username: "owner", Active: true}
	granted = &entity.User{ID: 2, Username: "reader", Active: true}
	writer = &entity.User{ID: 3, Username: "writer", Active: true}
	stranger = &entity.User{ID: 4, Username: "stranger", Active: true}
	return
}

func testNote(defaultAccess entity.DefaultAccess) *entity.Note {
	return &entity.Note{
		ID:            10,
		PublicID:      "a4c9f1f2-0001-4b9e-8000-000000000001",
		Alias:         strPtr("my-note"),
		OwnerID:       1,
		Content:       "# hello",
		DefaultAccess: defaultAccess,
		Grants: []entity.Grant{
			{NoteID: 10, UserID: 2, CanWrite: false},
			{NoteID: 10, UserID: 3, CanWrite: true},
		},
	}
}

func TestOwnerHasEverything(t *testing.T) {
	p := NewNotePolicy(false)
	owner, _, _, _ := testUsers()
	note := testNote(entity.AccessNone)

	if !p.IsOwner(owner, note) {
		t.Error("IsOwner(owner) = false")
	}
	if !p.MayWrite(owner, note) {
		t.Error("MayWrite(owner) = false")
	}
	if !p.MayRead(owner, note) {
		t.Error("MayRead(owner) = false")
	}
}

func TestGrantLevels(t *testing.T) {
	p := NewNotePolicy(false)
	_, granted, writer, stranger := testUsers()
	note := testNote(entity.AccessNone)

	if !p.MayRead(granted, note) {
		t.Error("read grant should allow read")
	}
	if p.MayWrite(granted, note) {
		t.Error("read grant must not allow write")
	}
	if p.IsOwner(granted, note) {
		t.Error("grant must never imply ownership")
	}

	if !p.MayWrite(writer, note) {
		t.Error("write grant should allow write")
	}
	if !p.MayRead(writer, note) {
		t.Error("write grant should allow read")
	}
	if p.IsOwner(writer, note) {
		t.Error("write grant must never imply ownership")
	}

	if p.MayRead(stranger, note) {
		t.Error("stranger must not read a private note")
	}
	if p.MayWrite(stranger, note) {
		t.Error("stranger must not write a private note")
	}
}

func TestDefaultAccess(t *testing.T) {
	p := NewNotePolicy(false)
	_, _, _, stranger := testUsers()

	readAll := testNote(entity.AccessRead)
	if !p.MayRead(stranger, readAll) {
		t.Error("default read should allow any identity to read")
	}
	if !p.MayRead(nil, readAll) {
		t.Error("default read should allow guests to read")
	}
	if p.MayWrite(stranger, readAll) {
		t.Error("default read must not allow write")
	}

	writeAll := testNote(entity.AccessWrite)
	if !p.MayWrite(nil, writeAll) {
		t.Error("default write should allow guests to write")
	}
	if !p.MayRead(nil, writeAll) {
		t.Error("default write should imply read")
	}
	if p.IsOwner(nil, writeAll) {
		t.Error("guests own nothing")
	}
}

// Owner-allow must imply write-allow, and write-allow must imply
// read-allow, for every combination of identity and note.
func TestHierarchyMonotonicity(t *testing.T) {
	p := NewNotePolicy(false)
	owner, granted, writer, stranger := testUsers()

	actors := []*entity.User{owner, granted, writer, stranger, nil}
	notes := []*entity.Note{
		testNote(entity.AccessNone),
		testNote(entity.AccessRead),
		testNote(entity.AccessWrite),
	}

	for _, actor := range actors {
		for _, note := range notes {
			if p.IsOwner(actor, note) && !p.MayWrite(actor, note) {
				t.Errorf("actor %v: owner without write on %s", actor, note.DefaultAccess)
			}
			if p.MayWrite(actor, note) && !p.MayRead(actor, note) {
				t.Errorf("actor %v: write without read on %s", actor, note.DefaultAccess)
			}
		}
	}
}

func TestMayCreate(t *testing.T) {
	p := NewNotePolicy(false)
	owner, _, _, _ := testUsers()

	if !p.MayCreate(owner) {
		t.Error("registered active user should create")
	}
	if p.MayCreate(nil) {
		t.Error("guest must not create when guest creation is off")
	}

	suspended := &entity.User{ID: 9, Username: "sus", Active: true, Suspended: true}
	if p.MayCreate(suspended) {
		t.Error("suspended user must not create")
	}

	open := NewNotePolicy(true)
	if !open.MayCreate(nil) {
		t.Error("guest should create when guest creation is on")
	}
}

// A CREATE check never has a note; being handed one is a caller defect
// and must deny regardless of who asks.
func TestEvaluateCreateWithNoteDenies(t *testing.T) {
	p := NewNotePolicy(true)
	owner, _, _, _ := testUsers()
	note := testNote(entity.AccessWrite)

	actors := []*entity.User{owner, nil}
	for _, actor := range actors {
		if denial := p.Evaluate(actor, entity.PermissionCreate, note); denial == nil {
			t.Errorf("Evaluate(CREATE, note != nil) allowed for actor %v", actor)
		}
	}
}

func TestEvaluate(t *testing.T) {
	p := NewNotePolicy(false)
	owner, granted, _, stranger := testUsers()
	note := testNote(entity.AccessNone)

	if denial := p.Evaluate(owner, entity.PermissionOwner, note); denial != nil {
		t.Errorf("owner denied OWNER: %v", denial)
	}
	if denial := p.Evaluate(granted, entity.PermissionRead, note); denial != nil {
		t.Errorf("granted user denied READ: %v", denial)
	}

	denial := p.Evaluate(granted, entity.PermissionWrite, note)
	if denial == nil {
		t.Fatal("read-only grant allowed WRITE")
	}
	if denial.Code() != 403 {
		t.Errorf("policy denial code = %d, want 403", denial.Code())
	}

	if denial := p.Evaluate(stranger, entity.PermissionRead, note); denial == nil {
		t.Error("stranger allowed READ on private note")
	}

	// A nil note on a note-bound level is missing information: deny as
	// not-found, never allow.
	denial = p.Evaluate(owner, entity.PermissionRead, nil)
	if denial == nil {
		t.Fatal("nil note allowed READ")
	}
	if denial != apierror.NotFoundError {
		t.Errorf("nil note denial = %v, want NotFoundError", denial)
	}

	if denial := p.Evaluate(owner, entity.PermissionCreate, nil); denial != nil {
		t.Errorf("registered user denied CREATE: %v", denial)
	}
}
