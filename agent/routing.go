package agent

import "github.com/BaSui01/shopagent/workflow"

// 节点 ID
const (
	NodeCheckLogin    = "check_login"
	NodeAnalyzeIntent = "analyze_intent"
	NodeSearchProduct = "search_product"
	NodeCheckStock    = "check_stock"
	NodeCollectInfo   = "collect_info"
	NodeCreateOrder   = "create_order"
	NodeLoginRequired = "login_required"
)

// RouteIntent 下单意图必须先登录，其余意图（包括 track）都进入商品检索
func RouteIntent(s State) string {
	if s.Intent == IntentOrder && !s.Authenticated() {
		return NodeLoginRequired
	}
	return NodeSearchProduct
}

// RouteSearchResult 只有下单意图且找到商品时才继续检查库存
func RouteSearchResult(s State) string {
	if s.Intent == IntentOrder && s.Product != nil {
		return NodeCheckStock
	}
	return workflow.END
}

// RouteStockCheck 库存检查已终止流程时结束，否则补全下单信息
func RouteStockCheck(s State) string {
	if s.NextStep == NextStepEnd {
		return workflow.END
	}
	return NodeCollectInfo
}
