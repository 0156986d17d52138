package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func memberIDs(g *api.Group) []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// memberNames maps member IDs to names. Members that join together have no
// defined order.
func memberNames(g *api.Group) map[string]string {
	names := make(map[string]string, len(g.Members))
	for _, m := range g.Members {
		names[m.ID] = m.Name
	}
	return names
}

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")

	resp, err := env.groups.CreateGroup(context.Background(), authed(alice, &api.CreateGroupRequest{
		Name:        "  Roommates ",
		Description: "Rent and utilities",
		MemberIDs:   []string{bob.ID, alice.ID, bob.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID == "" {
		t.Error("expected group ID to be generated")
	}
	if group.Name != "Roommates" {
		t.Errorf("expected name 'Roommates', got %q", group.Name)
	}
	if group.CreatedBy != alice.ID {
		t.Errorf("created_by = %s, want %s", group.CreatedBy, alice.ID)
	}

	names := memberNames(group)
	if len(group.Members) != 2 || names[alice.ID] != "Alice" || names[bob.ID] != "Bob" {
		t.Errorf("members = %v, want Alice and Bob", names)
	}
}

func TestCreateGroup_Errors(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	ctx := context.Background()

	_, err := env.groups.CreateGroup(ctx, authed(alice, &api.CreateGroupRequest{Name: " "}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(ctx, authed(alice, &api.CreateGroupRequest{Name: "Trip", MemberIDs: []string{"ghost"}}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Trip"}))
	wantCode(t, err, connect.CodeUnauthenticated)
}

func TestGetGroup_Access(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	mallory := env.register(t, "Mallory")
	group := env.createGroup(t, alice)
	ctx := context.Background()

	resp, err := env.groups.GetGroup(ctx, authed(alice, &api.GetGroupRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if resp.Msg.Group.ID != group.ID {
		t.Errorf("got group %s, want %s", resp.Msg.Group.ID, group.ID)
	}

	_, err = env.groups.GetGroup(ctx, authed(mallory, &api.GetGroupRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetGroup(ctx, authed(alice, &api.GetGroupRequest{GroupID: "missing"}))
	wantCode(t, err, connect.CodeNotFound)

	_, err = env.groups.GetGroup(ctx, authed(alice, &api.GetGroupRequest{}))
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestListGroups(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	carol := env.register(t, "Carol")

	shared := env.createGroup(t, alice, bob)
	env.createGroup(t, carol)

	resp, err := env.groups.ListGroups(context.Background(), authed(bob, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(resp.Msg.Groups))
	}
	if resp.Msg.Groups[0].ID != shared.ID {
		t.Errorf("got group %s, want %s", resp.Msg.Groups[0].ID, shared.ID)
	}
	if names := memberNames(resp.Msg.Groups[0]); len(names) != 2 || names[alice.ID] != "Alice" {
		t.Errorf("members = %v", names)
	}
}

func TestUpdateGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	group := env.createGroup(t, alice, bob)
	ctx := context.Background()

	name, desc := "Beach house", "August"
	resp, err := env.groups.UpdateGroup(ctx, authed(bob, &api.UpdateGroupRequest{
		GroupID:     group.ID,
		Name:        &name,
		Description: &desc,
	}))
	if err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}
	if resp.Msg.Group.Name != name || resp.Msg.Group.Description != desc {
		t.Errorf("updated group = %+v", resp.Msg.Group)
	}
	if len(resp.Msg.Group.Members) != 2 {
		t.Errorf("members changed: %+v", resp.Msg.Group.Members)
	}

	blank := ""
	_, err = env.groups.UpdateGroup(ctx, authed(alice, &api.UpdateGroupRequest{GroupID: group.ID, Name: &blank}))
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	group := env.createGroup(t, alice, bob)
	ctx := context.Background()

	env.addExpense(t, alice, &api.CreateExpenseRequest{
		GroupID:   group.ID,
		Amount:    dec("20"),
		SplitType: "equal",
		SplitWith: []string{alice.ID, bob.ID},
	})

	_, err := env.groups.DeleteGroup(ctx, authed(bob, &api.DeleteGroupRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodePermissionDenied)

	if _, err := env.groups.DeleteGroup(ctx, authed(alice, &api.DeleteGroupRequest{GroupID: group.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = env.groups.GetGroup(ctx, authed(alice, &api.GetGroupRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestAddMembers(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	carol := env.register(t, "Carol")
	group := env.createGroup(t, alice)
	ctx := context.Background()

	_, err := env.groups.GetGroup(ctx, authed(bob, &api.GetGroupRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodePermissionDenied)

	resp, err := env.groups.AddMembers(ctx, authed(alice, &api.AddMembersRequest{
		GroupID: group.ID,
		UserIDs: []string{bob.ID, carol.ID, alice.ID},
	}))
	if err != nil {
		t.Fatalf("AddMembers failed: %v", err)
	}
	if got := memberIDs(resp.Msg.Group); len(got) != 3 {
		t.Errorf("members = %v, want 3", got)
	}

	if _, err := env.groups.GetGroup(ctx, authed(bob, &api.GetGroupRequest{GroupID: group.ID})); err != nil {
		t.Errorf("new member cannot read group: %v", err)
	}

	_, err = env.groups.AddMembers(ctx, authed(alice, &api.AddMembersRequest{GroupID: group.ID, UserIDs: []string{"ghost"}}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.AddMembers(ctx, authed(alice, &api.AddMembersRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodeInvalidArgument)
}
