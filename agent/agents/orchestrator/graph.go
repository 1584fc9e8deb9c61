package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/ultra-assistant/agent/nodes"
)

func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodex.NodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeValidateRequest, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeLoadTranscript,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadTranscript(ctx, in, o.conversation)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeLoadTranscript, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeInjectMemory,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.InjectMemory(ctx, in, o.memory)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeInjectMemory, err)
	}

	if err := graph.AddLambdaNode(nodex.NodePlanTurn,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PlanTurn(ctx, in, o.planner, o.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodePlanTurn, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeExecuteTools,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteTools(ctx, in, o.executor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeExecuteTools, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeSynthesizeAnswer,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SynthesizeAnswer(ctx, in, o.synthesizer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeSynthesizeAnswer, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeRecordAnswer,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordAnswer(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeRecordAnswer, err)
	}

	if err := graph.AddLambdaNode(nodex.NodePersistTranscript,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PersistTranscript(ctx, in, o.conversation)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodePersistTranscript, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeFinalizeReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeFinalizeReply, err)
	}

	edges := [][2]string{
		{compose.START, nodex.NodeValidateRequest},
		{nodex.NodeLoadTranscript, nodex.NodeInjectMemory},
		{nodex.NodeInjectMemory, nodex.NodePlanTurn},
		{nodex.NodeExecuteTools, nodex.NodeSynthesizeAnswer},
		{nodex.NodeSynthesizeAnswer, nodex.NodeRecordAnswer},
		{nodex.NodeRecordAnswer, nodex.NodePersistTranscript},
		{nodex.NodePersistTranscript, nodex.NodeFinalizeReply},
		{nodex.NodeFinalizeReply, compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	afterValidate := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.AfterValidate(in), nil
		},
		map[string]bool{
			nodex.NodeLoadTranscript: true,
			nodex.NodeFinalizeReply:  true,
		},
	)
	if err := graph.AddBranch(nodex.NodeValidateRequest, afterValidate); err != nil {
		return nil, fmt.Errorf("add branch %s: %w", nodex.NodeValidateRequest, err)
	}

	afterPlan := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.AfterPlan(in), nil
		},
		map[string]bool{
			nodex.NodeExecuteTools: true,
			nodex.NodeRecordAnswer: true,
		},
	)
	if err := graph.AddBranch(nodex.NodePlanTurn, afterPlan); err != nil {
		return nil, fmt.Errorf("add branch %s: %w", nodex.NodePlanTurn, err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
