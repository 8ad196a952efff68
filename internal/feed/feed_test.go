package feed

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubboard/internal/logger"
)

func init() {
	logger.Init()
}

func TestPublishInsertEvent(t *testing.T) {
	client, mock := redismock.NewClientMock()
	f := NewWithClient(client)

	mock.Regexp().ExpectPublish(channelName, `.*"kind":"insert".*`).SetVal(1)

	err := f.Publish(context.Background(), KindInsert)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishDeleteEvent(t *testing.T) {
	client, mock := redismock.NewClientMock()
	f := NewWithClient(client)

	mock.Regexp().ExpectPublish(channelName, `.*"kind":"delete".*`).SetVal(1)

	err := f.Publish(context.Background(), KindDelete)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishRedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	f := NewWithClient(client)

	mock.Regexp().ExpectPublish(channelName, `.*`).SetErr(assert.AnError)

	err := f.Publish(context.Background(), KindInsert)
	assert.Error(t, err)
}
