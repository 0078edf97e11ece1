package agent

import (
	"github.com/BaSui01/shopagent/workflow"
)

// GraphName 购物助手工作流名称，用作指标与审计标签
const GraphName = "shopping_agent"

// BuildGraph 组装并编译购物助手工作流
func BuildGraph(steps *Steps) (*workflow.CompiledGraph[State, Update], error) {
	g := workflow.NewStateGraph[State, Update](GraphName, State.Apply).
		AddNode(NodeCheckLogin, steps.CheckLogin).
		AddNode(NodeAnalyzeIntent, steps.AnalyzeIntent).
		AddNode(NodeSearchProduct, steps.SearchProduct).
		AddNode(NodeCheckStock, steps.CheckStock).
		AddNode(NodeCollectInfo, steps.CollectInfo).
		AddNode(NodeCreateOrder, steps.CreateOrder).
		AddNode(NodeLoginRequired, steps.LoginRequired).
		SetEntryPoint(NodeCheckLogin)

	g.AddEdge(NodeCheckLogin, NodeAnalyzeIntent)
	g.AddConditionalEdges(NodeAnalyzeIntent, RouteIntent, map[string]string{
		NodeSearchProduct: NodeSearchProduct,
		NodeLoginRequired: NodeLoginRequired,
	})
	g.AddConditionalEdges(NodeSearchProduct, RouteSearchResult, map[string]string{
		NodeCheckStock: NodeCheckStock,
		workflow.END:   workflow.END,
	})
	g.AddConditionalEdges(NodeCheckStock, RouteStockCheck, map[string]string{
		NodeCollectInfo: NodeCollectInfo,
		workflow.END:    workflow.END,
	})
	g.AddEdge(NodeCollectInfo, NodeCreateOrder)
	g.AddEdge(NodeCreateOrder, workflow.END)
	g.AddEdge(NodeLoginRequired, workflow.END)

	return g.Compile()
}
