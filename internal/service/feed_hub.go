package service

import (
	"context"
	"encoding/json"
	"fmt"
	"game_portal_backend/pkg/database"
	"game_portal_backend/pkg/logger"
	"game_portal_backend/pkg/monitoring"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 32
	onlineTTL      = 2 * time.Minute // 在线状态过期时间


	TopicActivity = "activity"
)

// 推送事件类型
const (
	EventActivityCreated = "ACTIVITY_CREATED"
	EventMessageCreated  = "MESSAGE_CREATED"
	EventMessagesRead    = "MESSAGES_READ"
	EventFriendRequest   = "FRIEND_REQUEST"
	EventFriendAccepted  = "FRIEND_ACCEPTED"
	EventFriendRemoved   = "FRIEND_REMOVED"
	EventUserStatus      = "USER_STATUS"
	EventSubscribed      = "SUBSCRIBED"
)

func MessagesTopic(userID uint) string { return fmt.Sprintf("messages:%d", userID) }

func FriendsTopic(userID uint) string { return fmt.Sprintf("friends:%d", userID) }

// topicOwner 解析用户私有主题的所属用户，公共主题返回 false
func topicOwner(topic string) (uint, bool) {
	i := strings.LastIndexByte(topic, ':')
	if i < 0 {
		return 0, false
	}
	id, err := strconv.ParseUint(topic[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func topicKind(topic string) string {
	if i := strings.IndexByte(topic, ':'); i >= 0 {
		return topic[:i]
	}
	return topic
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type  string      `json:"type"`
	Topic string      `json:"topic,omitempty"`
	Data  interface{} `json:"data"`
}

// FeedPublisher 业务服务只依赖发布能力
type FeedPublisher interface {
	Publish(topic string, msg WSMessage)
}

type FeedClient struct {
	ID      string
	Hub     *FeedHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  uint
	Limiter *rate.Limiter // 限流器

	mu     sync.RWMutex
	topics map[string]bool
}

func (c *FeedClient) subscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topics[topic]
}

// allowed 只能订阅公共主题或自己的私有主题
func (c *FeedClient) allowed(topic string) bool {
	if owner, ok := topicOwner(topic); ok {
		return owner == c.UserID
	}
	return topic == TopicActivity
}

func (c *FeedClient) setTopic(topic string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.topics[topic] = true
	} else {
		delete(c.topics, topic)
	}
}

func (c *FeedClient) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.ctx.Done():
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			break
		}

		if !c.Limiter.Allow() {
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		monitoring.FeedEventCounter.WithLabelValues(topicKind(msg.Topic), "in").Inc()
		c.handle(msg)
	}
}

func (c *FeedClient) handle(msg WSMessage) {
	if msg.Topic == "" || !c.allowed(msg.Topic) {
		return
	}
	switch msg.Type {
	case "SUBSCRIBE":
		c.setTopic(msg.Topic, true)
		c.reply(WSMessage{Type: EventSubscribed, Topic: msg.Topic, Data: true})
	case "UNSUBSCRIBE":
		c.setTopic(msg.Topic, false)
		c.reply(WSMessage{Type: EventSubscribed, Topic: msg.Topic, Data: false})
	}
}

func (c *FeedClient) reply(msg WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.Hub.deliver(c, payload)
}

func (c *FeedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// 每条消息一个帧，客户端按帧解析 JSON
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	clients map[uint]map[*FeedClient]struct{}
	mu      sync.RWMutex
}

// FriendLister 在线状态通知需要的好友列表
type FriendLister interface {
	FriendIDsCached(userID uint) ([]uint, error)
}

// FeedHub 按主题推送动态、私信和好友事件，多实例之间经 Redis 广播
type FeedHub struct {
	shards     [shardCount]*shard
	register   chan *FeedClient
	unregister chan *FeedClient
	Redis      *redis.Client
	Friends    FriendLister
	ctx        context.Context
	cancel     context.CancelFunc
	ready      chan struct{}
	stopOnce   sync.Once
}

type feedEnvelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

func NewFeedHub(rdb *redis.Client, friends FriendLister) *FeedHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &FeedHub{
		register:   make(chan *FeedClient),
		unregister: make(chan *FeedClient),
		Redis:      rdb,
		Friends:    friends,
		ctx:        ctx,
		cancel:     cancel,
		ready:      make(chan struct{}),
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{
			clients: make(map[uint]map[*FeedClient]struct{}),
		}
	}
	return h
}

func (h *FeedHub) getShard(userID uint) *shard {
	return h.shards[userID%shardCount]
}

// Ready Redis 订阅建立后关闭
func (h *FeedHub) Ready() <-chan struct{} {
	return h.ready
}

func (h *FeedHub) Run() {
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(h.ctx, feedChannel)
		if _, err := pubsub.Receive(h.ctx); err != nil {
			logger.Log.Error("Feed subscribe failed", zap.Error(err))
		}
		go func() {
			defer pubsub.Close()
			ch := pubsub.Channel()
			for {
				select {
				case <-h.ctx.Done():
					return
				case msg, ok := <-ch:
					if !ok {
						return
					}
					var env feedEnvelope
					if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
						logger.Log.Error("PubSub unmarshal error", zap.Error(err))
						continue
					}
					h.pushLocal(env.Topic, env.Payload)
				}
			}
		}()
	}
	close(h.ready)

	// 批量处理状态更新
	ticker := time.NewTicker(500 * time.Millisecond)
	// 状态续期定时器 (Heartbeat)
	heartbeatTicker := time.NewTicker(1 * time.Minute)
	defer func() {
		ticker.Stop()
		heartbeatTicker.Stop()
	}()

	type statusUpdate struct {
		userID uint
		status string
	}
	var pendingUpdates []statusUpdate

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			conns, ok := s.clients[client.UserID]
			if !ok {
				conns = make(map[*FeedClient]struct{})
				s.clients[client.UserID] = conns
			}
			conns[client] = struct{}{}
			first := len(conns) == 1
			s.mu.Unlock()
			monitoring.FeedOnlineConnections.Inc()
			if first {
				pendingUpdates = append(pendingUpdates, statusUpdate{client.UserID, "online"})
			}

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			last := false
			if conns, ok := s.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.Send)
					monitoring.FeedOnlineConnections.Dec()
				}
				if len(conns) == 0 {
					delete(s.clients, client.UserID)
					last = true
				}
			}
			s.mu.Unlock()
			if last {
				pendingUpdates = append(pendingUpdates, statusUpdate{client.UserID, "offline"})
			}

		case <-heartbeatTicker.C:
			// 为本地在线用户批量续期
			h.refreshOnlineStatus()

		case <-ticker.C:
			if len(pendingUpdates) == 0 {
				continue
			}

			if h.Redis != nil {
				pipe := h.Redis.Pipeline()
				for _, update := range pendingUpdates {
					key := onlineKey(update.userID)
					if update.status == "online" {
						pipe.Set(h.ctx, key, "true", onlineTTL)
					} else {
						pipe.Del(h.ctx, key)
					}
				}
				if _, err := pipe.Exec(h.ctx); err != nil {
					logger.Log.Error("Redis pipeline error", zap.Error(err))
				}
			}

			// 发送状态通知
			for _, update := range pendingUpdates {
				h.NotifyStatus(update.userID, update.status)
			}
			pendingUpdates = pendingUpdates[:0]
		}
	}
}

var feedChannel = database.RedisKey("feed")

func onlineKey(userID uint) string {
	return database.RedisKey("online", userID)
}

// refreshOnlineStatus 刷新当前实例所有在线用户的过期时间
func (h *FeedHub) refreshOnlineStatus() {
	if h.Redis == nil {
		return
	}
	pipe := h.Redis.Pipeline()
	count := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for userID := range s.clients {
			pipe.Expire(h.ctx, onlineKey(userID), onlineTTL)
			count++
		}
		s.mu.RUnlock()
	}
	if count > 0 {
		pipe.Exec(h.ctx)
		logger.Log.Debug("Refreshed online status", zap.Int("count", count))
	}
}

// NotifyStatus 把上下线事件推给好友
func (h *FeedHub) NotifyStatus(userID uint, status string) {
	if h.Friends == nil {
		return
	}
	ids, err := h.Friends.FriendIDsCached(userID)
	if err != nil {
		logger.Log.Warn("Load friends for status failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	msg := WSMessage{
		Type: EventUserStatus,
		Data: map[string]interface{}{
			"userId": userID,
			"status": status,
		},
	}
	for _, id := range ids {
		h.Publish(FriendsTopic(id), msg)
	}
}

// Publish 发布到主题，配置了 Redis 时经频道广播到所有实例
func (h *FeedHub) Publish(topic string, msg WSMessage) {
	msg.Topic = topic
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Feed marshal error", zap.Error(err), zap.String("topic", topic))
		return
	}
	monitoring.FeedEventCounter.WithLabelValues(topicKind(topic), "out").Inc()

	if h.Redis == nil {
		h.pushLocal(topic, msgBytes)
		return
	}

	payload, _ := json.Marshal(feedEnvelope{Topic: topic, Payload: msgBytes})
	if err := h.Redis.Publish(h.ctx, feedChannel, payload).Err(); err != nil {
		logger.Log.Error("Feed publish failed, delivering locally", zap.Error(err), zap.String("topic", topic))
		h.pushLocal(topic, msgBytes)
	}
}

func (h *FeedHub) deliver(c *FeedClient, payload []byte) {
	defer func() {
		// Send 可能已在注销时关闭
		recover()
	}()
	select {
	case c.Send <- payload:
	default:
	}
}

func (h *FeedHub) pushLocal(topic string, payload []byte) {
	if owner, ok := topicOwner(topic); ok {
		s := h.getShard(owner)
		s.mu.RLock()
		for client := range s.clients[owner] {
			if client.subscribed(topic) {
				h.deliver(client, payload)
			}
		}
		s.mu.RUnlock()
		return
	}

	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for _, conns := range s.clients {
			for client := range conns {
				if client.subscribed(topic) {
					h.deliver(client, payload)
				}
			}
		}
		s.mu.RUnlock()
	}
}

// LocalConnections 当前实例的连接数
func (h *FeedHub) LocalConnections() int {
	total := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for _, conns := range s.clients {
			total += len(conns)
		}
		s.mu.RUnlock()
	}
	return total
}

func (h *FeedHub) IsUserOnline(userID uint) bool {
	// 查本地分片
	s := h.getShard(userID)
	s.mu.RLock()
	_, ok := s.clients[userID]
	s.mu.RUnlock()
	if ok {
		return true
	}
	if h.Redis == nil {
		return false
	}

	// 查 Redis (多实例部署)
	val, err := h.Redis.Get(h.ctx, onlineKey(userID)).Result()
	return err == nil && val == "true"
}

// Stop 关闭所有连接并清理在线状态
func (h *FeedHub) Stop() {
	h.stopOnce.Do(func() {
		logger.Log.Info("FeedHub stopping: clearing online status and closing connections...")

		var allUserIDs []uint
		closed := 0
		for i := 0; i < shardCount; i++ {
			s := h.shards[i]
			s.mu.Lock()
			for userID, conns := range s.clients {
				allUserIDs = append(allUserIDs, userID)
				for client := range conns {
					close(client.Send)
					closed++
				}
				delete(s.clients, userID)
			}
			s.mu.Unlock()
		}

		if len(allUserIDs) > 0 && h.Redis != nil {
			pipe := h.Redis.Pipeline()
			for _, userID := range allUserIDs {
				pipe.Del(h.ctx, onlineKey(userID))
			}
			pipe.Exec(h.ctx)
		}

		h.cancel()
		monitoring.FeedOnlineConnections.Set(0) // 停机时清空指标
		logger.Log.Info("FeedHub stopped", zap.Int("closedConnections", closed))
	})
}

// ServeFeed 升级连接并订阅用户的私有主题和公共动态
func ServeFeed(hub *FeedHub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &FeedClient{
		ID:      uuid.NewString(),
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(30), 50), // 每秒30条，允许突发50条
		topics:  make(map[string]bool),
	}
	for _, topic := range []string{TopicActivity, MessagesTopic(userID), FriendsTopic(userID)} {
		client.topics[topic] = true
	}

	select {
	case client.Hub.register <- client:
	case <-hub.ctx.Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
