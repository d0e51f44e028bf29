package analysis

// Evaluation is the analysis service's verdict on a position snapshot.
// BestMove may legitimately be empty (e.g. a terminal position or a
// service that only scores); callers must treat that as a valid result.
type Evaluation struct {
	EvalCP      int    `json:"eval_cp"`
	BestMove    string `json:"best_move,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

type evaluateRequest struct {
	FEN  string `json:"fen"`
	Turn string `json:"turn"`
}

type commentRequest struct {
	FEN         string `json:"fen"`
	LastMoveSAN string `json:"last_move_san"`
}

type commentResponse struct {
	Text string `json:"text"`
}
