package mention

import (
	"testing"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyEvaluate(t *testing.T) {
	strict := Policy{EnforceForElevatedRoles: true}
	mentioned := common_models.Task{ID: "t1", Title: "Fix @Alice Smith handrail issue"}
	assigned := common_models.Task{ID: "t2", Title: "Ask @Bob for keys", AssignedTo: "E1"}
	broadcast := common_models.Task{ID: "t3", Title: "Quarterly audit prep", Description: "no mentions here"}

	alice := Viewer{Name: "Alice Smith", EmployeeID: "E1", Role: utils.RoleEmployee}
	carol := Viewer{Name: "Carol", EmployeeID: "E3", Role: utils.RoleEmployee}
	nobody := Viewer{Role: utils.RoleEmployee}

	assert.Equal(t, ReasonMentioned, strict.Evaluate(mentioned, alice))
	assert.Equal(t, ReasonAssigned, strict.Evaluate(assigned, alice))
	assert.Equal(t, ReasonHidden, strict.Evaluate(mentioned, carol))
	assert.Equal(t, ReasonHidden, strict.Evaluate(assigned, carol))

	for _, v := range []Viewer{alice, carol, nobody} {
		assert.Equal(t, ReasonBroadcast, strict.Evaluate(broadcast, v))
	}
}

func TestPolicyUnassignedViewerDoesNotMatchEmptyAssignee(t *testing.T) {
	task := common_models.Task{Title: "Talk to @Bob"}
	assert.Equal(t, ReasonHidden, Policy{}.Evaluate(task, Viewer{Name: "Carol"}))
}

func TestPolicyElevatedRoles(t *testing.T) {
	task := common_models.Task{Title: "Fix @Alice Smith handrail issue"}
	admin := Viewer{Name: "Dana", Role: utils.RoleCompanyAdmin}
	root := Viewer{Role: utils.RoleSuperAdmin}
	manager := Viewer{Name: "Eve", Role: utils.RoleManager}

	lenient := Policy{}
	assert.Equal(t, ReasonElevated, lenient.Evaluate(task, admin))
	assert.Equal(t, ReasonElevated, lenient.Evaluate(task, root))
	assert.Equal(t, ReasonHidden, lenient.Evaluate(task, manager))

	strict := Policy{EnforceForElevatedRoles: true}
	assert.Equal(t, ReasonHidden, strict.Evaluate(task, admin))
	assert.Equal(t, ReasonHidden, strict.Evaluate(task, root))
}

func TestFilterKeepsOrderAndLimit(t *testing.T) {
	tasks := []common_models.Task{
		{ID: "a", Title: "one"},
		{ID: "b", Title: "for @Zed"},
		{ID: "c", Title: "two"},
		{ID: "d", Title: "three"},
	}
	viewer := Viewer{Name: "Alice", Role: utils.RoleEmployee}

	all := Policy{}.Filter(tasks, viewer, 0)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[1].ID)
	assert.Equal(t, "d", all[2].ID)

	capped := Policy{}.Filter(tasks, viewer, 2)
	require.Len(t, capped, 2)
	assert.Equal(t, "c", capped[1].ID)
}

func TestMentionScenario(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 := common_models.Task{
		ID:        "T1",
		CompanyID: "C",
		Title:     "Fix @Alice Smith handrail issue",
		Status:    common_models.TaskStatusPending,
		CreatedAt: created,
	}
	t2 := common_models.Task{
		ID:        "T2",
		CompanyID: "C",
		Title:     "Replace fire extinguisher",
		Status:    common_models.TaskStatusCompleted,
		CreatedAt: created.Add(time.Hour),
	}
	tasks := []common_models.Task{t1, t2}
	viewer := Viewer{Name: "Alice Smith", EmployeeID: "E1", Role: utils.RoleEmployee}

	visible := Policy{EnforceForElevatedRoles: true}.Filter(tasks, viewer, 0)
	require.Len(t, visible, 2)
	assert.Equal(t, "T1", visible[0].ID)
	assert.Equal(t, ReasonMentioned, visible[0].Visibility)
	assert.Equal(t, "T2", visible[1].ID)
	assert.Equal(t, ReasonBroadcast, visible[1].Visibility)

	synthetic := SynthesizeMentions(nil, tasks, viewer.Name)
	require.Len(t, synthetic, 1)
	assert.Equal(t, "task-mention-T1", synthetic[0].ID)
	assert.False(t, synthetic[0].IsRead)
	assert.Equal(t, "T1", synthetic[0].RelatedID)
	assert.Equal(t, `Task: "Fix @Alice Smith handrail issue"`, synthetic[0].Message)
}
