package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
)

func TestRoomService_CreateRoom(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewRoomService(&roomStoreStub{}, nil, nil)

		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: Principal{UserID: "user-1"},
			Input:     RoomInput{Name: "Borealis", Location: "4F", Capacity: 8},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewRoomService(&roomStoreStub{}, nil, nil)

		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			Input:     RoomInput{Name: "  ", Location: "", Capacity: 0},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"name", "location", "capacity"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("normalizes and persists rooms", func(t *testing.T) {
		store := &roomStoreStub{}
		now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
		svc := NewRoomService(store, func() string { return "room-1" }, func() time.Time { return now })

		created, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			Input: RoomInput{
				Name:      "  Borealis  ",
				Location:  "  4F  ",
				Capacity:  8,
				Equipment: []string{" Projector ", "projector", "", "Whiteboard"},
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if created.Name != "Borealis" || created.Location != "4F" {
			t.Fatalf("expected trimmed fields, got %+v", created)
		}
		if len(created.Equipment) != 2 || created.Equipment[0] != "Projector" || created.Equipment[1] != "Whiteboard" {
			t.Fatalf("expected deduplicated equipment, got %v", created.Equipment)
		}
		if len(store.rooms) != 1 || store.rooms[0].ID != "room-1" {
			t.Fatalf("expected persisted room, got %v", store.rooms)
		}
	})
}

func TestRoomService_UpdateRoom(t *testing.T) {
	t.Run("propagates ErrNotFound for missing rooms", func(t *testing.T) {
		svc := NewRoomService(&roomStoreStub{}, nil, nil)

		_, err := svc.UpdateRoom(context.Background(), UpdateRoomParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			RoomID:    "ghost",
			Input:     RoomInput{Name: "Borealis", Location: "4F", Capacity: 8},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("applies changes for administrators", func(t *testing.T) {
		store := twoRoomCatalog()
		now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
		svc := NewRoomService(store, nil, func() time.Time { return now })

		updated, err := svc.UpdateRoom(context.Background(), UpdateRoomParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			RoomID:    "room-1",
			Input:     RoomInput{Name: "Borealis XL", Location: "5F", Capacity: 12},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if updated.Name != "Borealis XL" || updated.Capacity != 12 {
			t.Fatalf("unexpected result: %+v", updated)
		}
		if !updated.UpdatedAt.Equal(now) {
			t.Fatalf("expected injected clock, got %v", updated.UpdatedAt)
		}
	})
}

func TestRoomService_DeleteRoom(t *testing.T) {
	t.Run("maps booked rooms to a validation error", func(t *testing.T) {
		store := &roomStoreStub{}
		svc := NewRoomService(&fkProtectedRoomStore{roomStoreStub: store}, nil, nil)

		err := svc.DeleteRoom(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "room-1")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["room"]; !ok {
			t.Fatalf("expected room validation error, got %v", vErr.FieldErrors)
		}
	})
}

// fkProtectedRoomStore simulates the schema refusing to delete a booked room.
type fkProtectedRoomStore struct {
	*roomStoreStub
}

func (s *fkProtectedRoomStore) DeleteRoom(ctx context.Context, id string) error {
	return persistence.ErrForeignKeyViolation
}

func TestRoomService_ListRooms(t *testing.T) {
	t.Run("orders rooms by name", func(t *testing.T) {
		svc := NewRoomService(twoRoomCatalog(), nil, nil)

		rooms, err := svc.ListRooms(context.Background(), Principal{UserID: "user-1"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(rooms) != 2 || rooms[0].Name != "Aurora" || rooms[1].Name != "Borealis" {
			t.Fatalf("unexpected order: %v", rooms)
		}
	})
}

func TestRoomService_FindRooms(t *testing.T) {
	store := &roomStoreStub{rooms: []persistence.Room{
		{ID: "room-1", Name: "Small", Location: "3F", Capacity: 4},
		{ID: "room-2", Name: "Large", Location: "4F", Capacity: 10, Equipment: []string{"Projector"}},
		{ID: "room-3", Name: "Medium", Location: "4F", Capacity: 8, Equipment: []string{"Whiteboard"}},
	}}
	svc := NewRoomService(store, nil, nil)

	t.Run("filters by capacity and equipment", func(t *testing.T) {
		rooms, err := svc.FindRooms(context.Background(), FindRoomsParams{
			Principal:         Principal{UserID: "user-1"},
			MinCapacity:       6,
			RequiredEquipment: []string{"projector"},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(rooms) != 1 || rooms[0].ID != "room-2" {
			t.Fatalf("expected only the large projector room, got %v", rooms)
		}
	})

	t.Run("no requirements matches every room", func(t *testing.T) {
		rooms, err := svc.FindRooms(context.Background(), FindRoomsParams{
			Principal: Principal{UserID: "user-1"},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(rooms) != 3 {
			t.Fatalf("expected all rooms, got %v", rooms)
		}
	})
}
