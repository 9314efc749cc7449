// Package mcp exposes the build triage analyzer as MCP tools over stdio.
package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pipetriage/src/analyze"
	"pipetriage/src/config"
	"pipetriage/src/logger"
	"pipetriage/src/provider"
	"pipetriage/src/sanitize"
)

// Server is the MCP server for pipetriage.
type Server struct {
	mcpServer *server.MCPServer
	cfg       *config.Config
	store     ReportStore
}

// NewServer creates a new MCP server backed by the given configuration.
func NewServer(cfg *config.Config) *Server {
	s := server.NewMCPServer(
		"pipetriage",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		cfg:       cfg,
		store:     NewInMemoryStore(),
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	triageTool := mcp.NewTool("triage_build",
		mcp.WithDescription("Triage an Azure Pipelines build: isolate failed tasks and jobs, group failures by stage, compare against the previous build on the same branch and classify the outcome. Returns a manifest with per-task findings; task logs are omitted - use get_task_log to drill into them."),
		mcp.WithNumber("build_id",
			mcp.Required(),
			mcp.Description("Azure DevOps build ID"),
		),
	)

	logTool := mcp.NewTool("get_task_log",
		mcp.WithDescription("Get the full log lines and findings for one failed task. Use after triage_build to drill into a task from the manifest."),
		mcp.WithString("request_id",
			mcp.Required(),
			mcp.Description("Request ID from the triage_build response"),
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task record ID from the manifest"),
		),
	)

	s.mcpServer.AddTool(triageTool, s.handleTriageBuild)
	s.mcpServer.AddTool(logTool, s.handleGetTaskLog)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// handleTriageBuild handles the triage_build tool call.
// Returns a lightweight manifest; use get_task_log for full logs.
func (s *Server) handleTriageBuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	buildID := request.GetInt("build_id", 0)
	if buildID == 0 {
		return mcp.NewToolResultError("build_id parameter is required"), nil
	}

	buildProvider, err := provider.New("azdevops", s.cfg.OrganizationURL, s.cfg.Project, s.cfg.Token)
	if err != nil {
		return mcp.NewToolResultError(provider.WrapError(err).Error()), nil
	}

	analyzer := analyze.New(buildProvider, logger.NewSilentLogger())

	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	report, err := analyzer.Report(ctx, buildID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("triage failed: %v", provider.WrapError(err))), nil
	}

	report.RequestID = generateRequestID()
	s.store.Store(report.RequestID, report)

	jsonBytes, err := json.Marshal(ToManifest(report))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleGetTaskLog handles the get_task_log tool call.
func (s *Server) handleGetTaskLog(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := request.GetString("request_id", "")
	if requestID == "" {
		return mcp.NewToolResultError("request_id parameter is required"), nil
	}

	taskID := request.GetString("task_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("task_id parameter is required"), nil
	}

	task, found := s.store.GetTask(requestID, taskID)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("task not found: request_id=%s, task_id=%s", requestID, taskID)), nil
	}

	// Log lines are stored raw; clean them before they leave over MCP.
	task.LogLines = sanitize.CleanLines(task.LogLines)

	jsonBytes, err := json.Marshal(task)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal task: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// generateRequestID creates a unique request identifier.
func generateRequestID() string {
	timestamp := time.Now().UTC().Format("20060102T150405")
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	return fmt.Sprintf("req-%s-%s", timestamp, hex.EncodeToString(randomBytes))
}
