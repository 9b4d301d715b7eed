package domain_test

import (
	"testing"

	"caresync-api/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveClientRole(t *testing.T) {
	coordinator := uuid.New()
	carer := uuid.New()
	stranger := uuid.New()

	client := &domain.Client{
		ID:            uuid.New(),
		CoordinatorID: coordinator,
		Carers:        []uuid.UUID{carer},
	}

	role := domain.ResolveClientRole(coordinator, client)
	assert.True(t, role.IsCoordinator)
	assert.False(t, role.IsCarer)
	assert.False(t, role.None())

	role = domain.ResolveClientRole(carer, client)
	assert.False(t, role.IsCoordinator)
	assert.True(t, role.IsCarer)

	role = domain.ResolveClientRole(stranger, client)
	assert.True(t, role.None())
}

// Self-assignment: the same user can hold both capabilities at once.
func TestResolveClientRole_CoordinatorAsCarer(t *testing.T) {
	coordinator := uuid.New()
	client := &domain.Client{
		ID:            uuid.New(),
		CoordinatorID: coordinator,
		Carers:        []uuid.UUID{coordinator},
	}

	role := domain.ResolveClientRole(coordinator, client)
	assert.True(t, role.IsCoordinator)
	assert.True(t, role.IsCarer)
}

func TestResolveShiftRole(t *testing.T) {
	coordinator := uuid.New()
	carer := uuid.New()

	shift := &domain.Shift{
		ID:            uuid.New(),
		CoordinatorID: coordinator,
		CarerID:       carer,
	}

	role := domain.ResolveShiftRole(coordinator, shift)
	assert.True(t, role.IsCoordinator)
	assert.False(t, role.IsShiftCarer)

	role = domain.ResolveShiftRole(carer, shift)
	assert.True(t, role.IsShiftCarer)

	role = domain.ResolveShiftRole(uuid.New(), shift)
	assert.True(t, role.None())
}

// A deleted account leaves uuid.Nil references on its shifts; nobody may
// inherit a role through them.
func TestResolveShiftRole_ClearedReferences(t *testing.T) {
	shift := &domain.Shift{
		ID:            uuid.New(),
		CoordinatorID: uuid.New(),
		CarerID:       uuid.Nil,
	}

	role := domain.ResolveShiftRole(uuid.Nil, shift)
	assert.True(t, role.None())
}
