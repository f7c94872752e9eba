package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleViewTag(_ context.Context, _ *mcpsdk.CallToolRequest, args ViewTagInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	var err error
	if args.Toggle {
		err = s.daemon.ToggleViewTag(args.Tag, args.Output)
	} else {
		err = s.daemon.ViewTag(args.Tag, args.Output)
	}
	if err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleViewTagLast(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.ViewTagLast(); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleMoveToTag(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveToTagInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	var err error
	if args.Toggle {
		err = s.daemon.ToggleWindowTag(args.Tag)
	} else {
		err = s.daemon.MoveToTag(args.Tag)
	}
	if err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.FocusWindow(args.Direction); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleSwapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.SwapWindow(args.Direction); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleFocusOutput(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.FocusOutput(args.Direction); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleSendToOutput(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.SendToOutput(args.Direction); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleRetile(_ context.Context, _ *mcpsdk.CallToolRequest, args RetileInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.Retile(args.Output); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleGetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args LayoutInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	name, err := s.daemon.GetLayout(args.Tag, args.Output)
	if err != nil {
		return nil, LayoutOutput{}, err
	}
	return nil, LayoutOutput{Name: name}, nil
}

func (s *Server) handleSetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args LayoutInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if args.Name == "" {
		return nil, OKOutput{}, fmt.Errorf("layout name is required")
	}
	if err := s.daemon.SetLayout(args.Tag, args.Output, args.Name); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleLayoutCmd(_ context.Context, _ *mcpsdk.CallToolRequest, args LayoutCmdInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.LayoutCmd(args.Cmd, args.Args); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	data, err := s.daemon.ListWindows()
	if err != nil {
		return nil, WindowsOutput{}, err
	}
	return nil, WindowsOutput{Windows: data.Windows}, nil
}

func (s *Server) handleListOutputs(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OutputsOutput, error) {
	data, err := s.daemon.ListOutputs()
	if err != nil {
		return nil, OutputsOutput{}, err
	}
	return nil, OutputsOutput{Outputs: data.Outputs}, nil
}

func (s *Server) handleGetState(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	data, err := s.daemon.GetState()
	if err != nil {
		return nil, StateOutput{}, err
	}
	return nil, StateOutput{State: *data}, nil
}

func (s *Server) handleExecOrFocus(_ context.Context, _ *mcpsdk.CallToolRequest, args ExecOrFocusInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.ExecOrFocus(args.App, args.Command); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}
