package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"expiryai/internal/modkit/repokit"
	"expiryai/internal/modkit/repokit/repotest"
	"expiryai/internal/services/identity/domain"
)

type fakeResolver struct {
	roles map[int64]domain.Role
	err   error
	asked [][]int64
}

func (f *fakeResolver) ResolveRoles(_ context.Context, ids []int64) (map[int64]domain.Role, error) {
	f.asked = append(f.asked, append([]int64(nil), ids...))
	if f.err != nil {
		return nil, f.err
	}
	out := map[int64]domain.Role{}
	for _, id := range ids {
		if r, ok := f.roles[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func ptr(v int64) *int64 { return &v }

func TestWeightCache_ResolvesAndDefaults(t *testing.T) {
	r := &fakeResolver{roles: map[int64]domain.Role{1: domain.RoleSuperadmin, 2: domain.RoleManager, 3: domain.RoleStaff}}
	c := NewWeightCache(r, nil)

	if err := c.Prime(context.Background(), []int64{3, 1, 2, 1, 99}); err != nil {
		t.Fatalf("Prime: %v", err)
	}

	cases := []struct {
		name string
		id   *int64
		want float64
	}{
		{"superadmin", ptr(1), 1.0},
		{"manager", ptr(2), 0.7},
		{"staff", ptr(3), 0.5},
		{"lookup miss is staff", ptr(99), 0.5},
		{"missing observer is staff", nil, 0.5},
	}
	for _, tc := range cases {
		if got := c.WeightFor(tc.id); got != tc.want {
			t.Errorf("%s: WeightFor = %v, want %v", tc.name, got, tc.want)
		}
	}
	if c.Unresolved() != 1 || c.Len() != 4 {
		t.Fatalf("Unresolved = %d Len = %d, want 1 and 4", c.Unresolved(), c.Len())
	}
	// misses are deduped and sorted
	if want := [][]int64{{1, 2, 3, 99}}; !reflect.DeepEqual(r.asked, want) {
		t.Fatalf("asked = %v, want %v", r.asked, want)
	}
}

func TestWeightCache_OnlyAsksForMisses(t *testing.T) {
	r := &fakeResolver{roles: map[int64]domain.Role{1: domain.RoleManager}}
	c := NewWeightCache(r, domain.DefaultWeights())
	ctx := context.Background()

	for _, ids := range [][]int64{{1}, {1}, {1, 2}, nil} {
		if err := c.Prime(ctx, ids); err != nil {
			t.Fatalf("Prime(%v): %v", ids, err)
		}
	}
	if want := [][]int64{{1}, {2}}; !reflect.DeepEqual(r.asked, want) {
		t.Fatalf("asked = %v, want %v", r.asked, want)
	}
}

func TestWeightCache_ScopedPerInstance(t *testing.T) {
	r := &fakeResolver{roles: map[int64]domain.Role{7: domain.RoleManager}}
	first := NewWeightCache(r, nil)
	if err := first.Prime(context.Background(), []int64{7}); err != nil {
		t.Fatal(err)
	}

	r.roles[7] = domain.RoleSuperadmin
	second := NewWeightCache(r, nil)
	if err := second.Prime(context.Background(), []int64{7}); err != nil {
		t.Fatal(err)
	}

	if got := first.WeightFor(ptr(7)); got != 0.7 {
		t.Fatalf("first = %v, want 0.7", got)
	}
	if got := second.WeightFor(ptr(7)); got != 1.0 {
		t.Fatalf("second = %v, want 1.0", got)
	}
}

func TestWeightCache_StorageErrorPropagates(t *testing.T) {
	boom := errors.New("users table gone")
	c := NewWeightCache(&fakeResolver{err: boom}, nil)
	if err := c.Prime(context.Background(), []int64{1}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d after a failed prime", c.Len())
	}
}

func TestWeightCache_CustomWeights(t *testing.T) {
	r := &fakeResolver{roles: map[int64]domain.Role{1: domain.RoleManager}}
	c := NewWeightCache(r, domain.Weights{domain.RoleManager: 0.9, domain.RoleStaff: 0.2})
	if err := c.Prime(context.Background(), []int64{1}); err != nil {
		t.Fatal(err)
	}
	if c.WeightFor(ptr(1)) != 0.9 || c.WeightFor(nil) != 0.2 {
		t.Fatalf("weights = %v/%v, want 0.9/0.2", c.WeightFor(ptr(1)), c.WeightFor(nil))
	}
}

type fakeRepo struct{ fakeResolver }

func TestService_DelegatesToRepo(t *testing.T) {
	f := &fakeRepo{fakeResolver{roles: map[int64]domain.Role{5: domain.RoleManager}}}
	s := New(&repotest.DB{}, repokit.BindFunc[domain.Repo](func(repokit.Queryer) domain.Repo { return f }))
	got, err := s.ResolveRoles(context.Background(), []int64{5, 6})
	if err != nil {
		t.Fatalf("ResolveRoles: %v", err)
	}
	if want := map[int64]domain.Role{5: domain.RoleManager}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
