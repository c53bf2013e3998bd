package messaging

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/pkg/common"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func TestGetOrCreateConversationIsStable(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	alice := common.UUIDint64()
	bob := common.UUIDint64()

	conv, err := svc.GetOrCreateConversation(ctx, alice, bob)
	require.NoError(t, err)

	// the pair is unordered
	again, err := svc.GetOrCreateConversation(ctx, bob, alice)
	require.NoError(t, err)
	require.Equal(t, conv.ID, again.ID)

	var count int64
	db.Model(&domain.Conversation{}).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestAppendDeduplicatesOnClientRef(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	alice := common.UUIDint64()
	bob := common.UUIDint64()
	conv, err := svc.GetOrCreateConversation(ctx, alice, bob)
	require.NoError(t, err)

	first, err := svc.Append(ctx, conv.ID, alice, "ref-1", "hello")
	require.NoError(t, err)

	// an outbox replay with the same ref returns the stored row
	replay, err := svc.Append(ctx, conv.ID, alice, "ref-1", "hello")
	require.NoError(t, err)
	require.Equal(t, first.ID, replay.ID)

	var count int64
	db.Model(&domain.Message{}).Count(&count)
	require.EqualValues(t, 1, count)

	// a different ref is a new message
	second, err := svc.Append(ctx, conv.ID, bob, "ref-2", "hi there")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	_, err = svc.Append(ctx, conv.ID, alice, "", "   ")
	require.Error(t, err)

	_, err = svc.Append(ctx, 424242, alice, "ref-3", "nobody home")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestAppendUpdatesLastMessageAt(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	conv, err := svc.GetOrCreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, conv.LastMessageAt.IsZero())

	msg, err := svc.Append(ctx, conv.ID, 1, "", "ping")
	require.NoError(t, err)

	stored, err := svc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.WithinDuration(t, msg.CreatedAt, stored.LastMessageAt, time.Second)
}

func TestMessagesCursor(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	conv, err := svc.GetOrCreateConversation(ctx, 1, 2)
	require.NoError(t, err)

	var ids []int64
	for i := 0; i < 5; i++ {
		msg, err := svc.Append(ctx, conv.ID, 1, "", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}

	all, err := svc.Messages(ctx, conv.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.Equal(t, "msg 0", all[0].Body)

	tail, err := svc.Messages(ctx, conv.ID, ids[2], 0)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	require.Equal(t, "msg 3", tail[0].Body)
}

func TestUnreadCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	alice := common.UUIDint64()
	bob := common.UUIDint64()
	conv, err := svc.GetOrCreateConversation(ctx, alice, bob)
	require.NoError(t, err)

	_, err = svc.Append(ctx, conv.ID, alice, "", "one")
	require.NoError(t, err)
	_, err = svc.Append(ctx, conv.ID, alice, "", "two")
	require.NoError(t, err)

	// own messages never count as unread
	count, err := svc.UnreadCount(ctx, conv.ID, alice)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	count, err = svc.UnreadCount(ctx, conv.ID, bob)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	require.NoError(t, svc.MarkSeen(ctx, conv.ID, bob))
	count, err = svc.UnreadCount(ctx, conv.ID, bob)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	time.Sleep(10 * time.Millisecond)
	_, err = svc.Append(ctx, conv.ID, alice, "", "three")
	require.NoError(t, err)
	count, err = svc.UnreadCount(ctx, conv.ID, bob)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestListConversationsVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	alice := &domain.User{ID: common.UUIDint64(), Role: domain.RoleUser}
	bob := &domain.User{ID: common.UUIDint64(), Role: domain.RoleUser}
	carol := &domain.User{ID: common.UUIDint64(), Role: domain.RoleUser}
	support := &domain.User{ID: common.UUIDint64(), Role: domain.RoleSupport}

	_, err := svc.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.GetOrCreateConversation(ctx, bob.ID, carol.ID)
	require.NoError(t, err)

	mine, err := svc.ListConversations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	bobs, err := svc.ListConversations(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobs, 2)

	all, err := svc.ListConversations(ctx, support)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
