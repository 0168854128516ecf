package ipc

import (
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

const dialTimeout = 2 * time.Second

// Client is a typed wrapper over the daemon's JSON-RPC socket.
type Client struct {
	conn *rpc.Client
}

// Dial connects to the daemon socket. A connection failure usually means the
// daemon is not running.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon socket %s: %w", socketPath, err)
	}
	return &Client{conn: jsonrpc.NewClient(conn)}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(method string, args, reply any) error {
	return c.conn.Call(ServiceName+"."+method, args, reply)
}

// Status fetches daemon runtime information.
func (c *Client) Status() (StatusResponse, error) {
	var reply StatusResponse
	err := c.call("Status", StatusRequest{}, &reply)
	return reply, err
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() (StopResponse, error) {
	var reply StopResponse
	err := c.call("Stop", StopRequest{}, &reply)
	return reply, err
}

// GamesList fetches the reconciled listing.
func (c *Client) GamesList(excludeCompleted bool) (GamesListResponse, error) {
	var reply GamesListResponse
	err := c.call("GamesList", GamesListRequest{ExcludeCompleted: excludeCompleted}, &reply)
	return reply, err
}

// CatalogList fetches the persisted catalog without fetching from sources.
func (c *Client) CatalogList() (CatalogListResponse, error) {
	var reply CatalogListResponse
	err := c.call("CatalogList", CatalogListRequest{}, &reply)
	return reply, err
}

// Import submits raw PGN text for batch import.
func (c *Client) Import(text string) (ImportResponse, error) {
	var reply ImportResponse
	err := c.call("Import", ImportRequest{Text: text}, &reply)
	return reply, err
}

// Analyze queues engine analysis for a game.
func (c *Client) Analyze(gameID string, depth, priority int) (AnalyzeResponse, error) {
	var reply AnalyzeResponse
	err := c.call("Analyze", AnalyzeRequest{GameID: gameID, Depth: depth, Priority: priority}, &reply)
	return reply, err
}

// SetPriority replaces a queued job's priority.
func (c *Client) SetPriority(jobID string, priority int) (PriorityResponse, error) {
	var reply PriorityResponse
	err := c.call("Priority", PriorityRequest{JobID: jobID, Priority: priority}, &reply)
	return reply, err
}

// AdjustPriority shifts a queued job's priority by delta.
func (c *Client) AdjustPriority(jobID string, delta int) (PriorityResponse, error) {
	var reply PriorityResponse
	err := c.call("Priority", PriorityRequest{JobID: jobID, Delta: delta, Adjust: true}, &reply)
	return reply, err
}

// CancelJob cancels a queued or running job.
func (c *Client) CancelJob(jobID string) (JobActionResponse, error) {
	var reply JobActionResponse
	err := c.call("CancelJob", JobRequest{JobID: jobID}, &reply)
	return reply, err
}

// RetryJob re-queues a failed job.
func (c *Client) RetryJob(jobID string) (JobActionResponse, error) {
	var reply JobActionResponse
	err := c.call("RetryJob", JobRequest{JobID: jobID}, &reply)
	return reply, err
}

// JobGet fetches a single job.
func (c *Client) JobGet(jobID string) (JobResponse, error) {
	var reply JobResponse
	err := c.call("JobGet", JobRequest{JobID: jobID}, &reply)
	return reply, err
}

// JobsList fetches jobs, optionally filtered by lifecycle status.
func (c *Client) JobsList(status string) (JobsListResponse, error) {
	var reply JobsListResponse
	err := c.call("JobsList", JobsListRequest{Status: status}, &reply)
	return reply, err
}

// JobHealth fetches aggregate job diagnostics.
func (c *Client) JobHealth() (HealthResponse, error) {
	var reply HealthResponse
	err := c.call("JobHealth", HealthRequest{}, &reply)
	return reply, err
}
