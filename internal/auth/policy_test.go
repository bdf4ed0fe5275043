package auth

import (
	"testing"

	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	u1, u2 := 1, 2
	assert.True(t, CanMutate(u1, u1, false))
	assert.False(t, CanMutate(u2, u1, false))
	assert.True(t, CanMutate(u2, u1, true))
}

func TestRequireAdmin(t *testing.T) {
	assert.False(t, RequireAdmin(nil))
	assert.False(t, RequireAdmin(&models.User{ID: 1}))
	assert.True(t, RequireAdmin(&models.User{ID: 1, IsAdmin: true}))
}

func TestCheck(t *testing.T) {
	owner := &models.User{ID: 1}
	other := &models.User{ID: 2}
	admin := &models.User{ID: 3, IsAdmin: true}

	tests := []struct {
		name    string
		actor   *models.User
		op      Operation
		ownerID int
		wantErr error
	}{
		{"anonymous", nil, OpProjectCreate, 0, ErrUnauthenticated},
		{"any user creates project", other, OpProjectCreate, 0, nil},
		{"owner updates project", owner, OpProjectUpdate, 1, nil},
		{"other updates project", other, OpProjectUpdate, 1, ErrForbidden},
		{"admin deletes project", admin, OpProjectDelete, 1, nil},
		{"owner deletes plant", owner, OpPlantDelete, 1, ErrForbidden},
		{"admin deletes plant", admin, OpPlantDelete, 1, nil},
		{"owner reads statistics", owner, OpMaterialStatistics, 1, ErrForbidden},
		{"user reads self", owner, OpUserRead, 1, nil},
		{"user reads other", other, OpUserRead, 1, ErrForbidden},
		{"undeclared operation", admin, Operation("project.export"), 0, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.actor, tt.op, tt.ownerID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEveryOperationDeclared(t *testing.T) {
	ops := []Operation{
		OpProjectCreate, OpProjectUpdate, OpProjectDelete, OpProjectUpload, OpProjectVersion, OpProjectStatistics,
		OpPlantCreate, OpPlantUpdate, OpPlantImage, OpPlantDelete, OpPlantStatistics,
		OpMaterialCreate, OpMaterialUpdate, OpMaterialImage, OpMaterialDelete, OpMaterialStatistics,
		OpUserRead, OpUserList, OpUserManage, OpUserDeactivate, OpAuditRead,
	}
	for _, op := range ops {
		r, ok := RuleFor(op)
		assert.True(t, ok, "%s has no rule", op)
		assert.NotEqual(t, "undeclared", r.String())
	}
}
