//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/parley-server/internal/model"
	repo "github.com/dtroode/parley-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "parley_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/parley_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newUser(email string) model.User {
	return model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	u := newUser("user@example.com")

	saved, err := ur.Create(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u.ID, saved.ID)

	_, err = ur.Create(ctx, newUser("user@example.com"))
	require.ErrorIs(t, err, model.ErrDuplicateResource)

	byEmail, err := ur.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, u.PasswordHash, byEmail.PasswordHash)

	byID, err := ur.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)

	_, err = ur.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = ur.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)

	list, err := ur.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)
}

func TestMessageRepository_Conversation(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mr := repo.NewMessageRepository(conn)

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	base := time.Now().UTC().Truncate(time.Millisecond)

	send := func(from, to uuid.UUID, text string, at time.Time) model.Message {
		id, err := uuid.NewV7()
		require.NoError(t, err)
		m, err := mr.Create(ctx, model.Message{ID: id, From: from, To: to, Text: text, CreatedAt: at})
		require.NoError(t, err)
		return m
	}

	first := send(a, b, "hi", base)
	second := send(b, a, "hello", base.Add(time.Millisecond))
	third := send(a, b, "same instant", base.Add(time.Millisecond))
	send(a, c, "other conversation", base)

	all, err := mr.GetConversation(ctx, b, a, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, first.ID, all[0].ID)
	require.Equal(t, second.ID, all[1].ID)
	require.Equal(t, third.ID, all[2].ID)

	limited, err := mr.GetConversation(ctx, a, b, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, first.ID, limited[0].ID)

	empty, err := mr.GetConversation(ctx, b, c, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}
