package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/service"
)

type apiServer struct {
	engine   *service.Engine
	safeMode bool
}

func newAPI(engine *service.Engine) *apiServer {
	return &apiServer{engine: engine}
}

func (a *apiServer) registerJSONRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/summary", a.wrapGET(a.getSummary))
	mux.HandleFunc("/api/summary/recent", a.wrapGET(a.getRecentSummaries))
	mux.HandleFunc("/api/trends", a.wrapGET(a.getTrends))
	mux.HandleFunc("/api/patterns", a.wrapGET(a.getPatterns))
	mux.HandleFunc("/api/burnout", a.wrapGET(a.getBurnout))
	mux.HandleFunc("/api/balance", a.wrapGET(a.getBalance))
	mux.HandleFunc("/api/score", a.wrapGET(a.getScore))
	mux.HandleFunc("/api/insights", a.wrapGET(a.getInsights))
	mux.HandleFunc("/api/stats", a.wrapGET(a.getStats))

	mux.HandleFunc("/api/achievements", a.wrapGET(a.getAchievements))
	mux.HandleFunc("/api/achievements/check", a.wrapPOST(a.checkAchievements))

	mux.HandleFunc("/api/rollover", a.wrapPOST(a.processRollover))
	mux.HandleFunc("/api/predict", a.wrapPOST(a.predictCompletion))

	mux.HandleFunc("/api/challenge", a.wrapGET(a.getChallenge))
	mux.HandleFunc("/api/quote", a.wrapGET(a.getQuote))

	mux.HandleFunc("/api/tasks", a.tasksCollection)
	mux.HandleFunc("/api/tasks/subtasks", a.wrapGET(a.getSubtasks))
	mux.HandleFunc("/api/tasks/schedule", a.wrapPOST(a.scheduleTask))
	mux.HandleFunc("/api/tasks/start", a.wrapPOST(a.startTask))
	mux.HandleFunc("/api/tasks/complete", a.wrapPOST(a.completeTask))
	mux.HandleFunc("/api/tasks/archive", a.wrapPOST(a.archiveTask))
}

func (a *apiServer) wrapGET(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapPOST(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if a.safeMode {
			writeError(w, http.StatusServiceUnavailable, "数据库处于安全模式，拒绝写入")
			return
		}
		fn(w, r)
	}
}

// dateParam 取 date 参数，缺省为今天
func dateParam(r *http.Request) (string, bool) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		return time.Now().Format(repository.DateLayout), true
	}
	if _, err := repository.ParseDate(date); err != nil {
		return "", false
	}
	return date, true
}

func daysParam(r *http.Request, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("days"))
	if raw == "" {
		return fallback
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return fallback
	}
	if days > 90 {
		days = 90
	}
	return days
}

// ========== handlers ==========

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"name":    a.engine.Cfg.App.Name,
		"version": a.engine.Cfg.App.Version,
	})
}

func (a *apiServer) getSummary(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "日期格式错误，请使用 YYYY-MM-DD")
		return
	}
	summary, err := a.engine.Summary.GetDaily(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *apiServer) getRecentSummaries(w http.ResponseWriter, r *http.Request) {
	days := daysParam(r, 7)
	summaries, err := a.engine.Summary.Recent(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}

func (a *apiServer) getTrends(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "日期格式错误，请使用 YYYY-MM-DD")
		return
	}
	days := daysParam(r, a.engine.Cfg.Trend.WindowDays)
	report, err := a.engine.AnalyzeTrends(r.Context(), date, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *apiServer) getPatterns(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "日期格式错误，请使用 YYYY-MM-DD")
		return
	}
	days := daysParam(r, a.engine.Cfg.Trend.WindowDays)
	report, err := a.engine.AnalyzeTrends(r.Context(), date, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patterns": report.Patterns})
}

func (a *apiServer) getBurnout(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "日期格式错误，请使用 YYYY-MM-DD")
		return
	}
	days := daysParam(r, a.engine.Cfg.Burnout.WindowDays)
	result, err := a.engine.AnalyzeBurnout(r.Context(), date, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) getBalance(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "日期格式错误，请使用 YYYY-MM-DD")
		return
	}
	result, err := a.engine.AnalyzeBalance(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) getScore(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "日期格式错误，请使用 YYYY-MM-DD")
		return
	}
	days := daysParam(r, a.engine.Cfg.Scoring.WindowDays)
	result, err := a.engine.ScoreWindow(r.Context(), date, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) getInsights(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "日期格式错误，请使用 YYYY-MM-DD")
		return
	}
	days := daysParam(r, a.engine.Cfg.Insights.WindowDays)
	insights, err := a.engine.GenerateInsights(r.Context(), date, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

func (a *apiServer) getStats(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "日期格式错误，请使用 YYYY-MM-DD")
		return
	}
	stats, err := a.engine.Stats.Assemble(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *apiServer) getAchievements(w http.ResponseWriter, r *http.Request) {
	list, err := a.engine.Achievements.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": list})
}

func (a *apiServer) checkAchievements(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体格式错误")
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format(repository.DateLayout)
	}
	newly, err := a.engine.Achievements.Check(r.Context(), req.Date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if newly == nil {
		newly = []service.AchievementDef{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"newly_unlocked": newly})
}

func (a *apiServer) processRollover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromDate string `json:"from_date"`
		ToDate   string `json:"to_date"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体格式错误")
		return
	}
	result, err := a.engine.Rollover.Process(r.Context(), req.FromDate, req.ToDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) predictCompletion(w http.ResponseWriter, r *http.Request) {
	var req service.PredictRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体格式错误")
		return
	}
	result, err := a.engine.Predictor.Predict(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) getChallenge(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "日期格式错误，请使用 YYYY-MM-DD")
		return
	}
	challenge, err := a.engine.Motivator.Challenge(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

func (a *apiServer) getQuote(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "日期格式错误，请使用 YYYY-MM-DD")
		return
	}

	quoteCtx := strings.TrimSpace(r.URL.Query().Get("context"))
	if quoteCtx == "" {
		summary, err := a.engine.Summary.GetDaily(r.Context(), date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		quoteCtx = service.QuoteContext(time.Now().Hour(), summary.CompletionRate)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"context": quoteCtx,
		"quote":   service.Quote(quoteCtx, date),
	})
}

func (a *apiServer) tasksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tasks, err := a.engine.Tasks.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
	case http.MethodPost:
		if a.safeMode {
			writeError(w, http.StatusServiceUnavailable, "数据库处于安全模式，拒绝写入")
			return
		}
		var in service.CreateTaskInput
		if err := readJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "请求体格式错误")
			return
		}
		task, err := a.engine.Tasks.Create(r.Context(), in)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, task)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *apiServer) getSubtasks(w http.ResponseWriter, r *http.Request) {
	parentID, err := strconv.ParseInt(r.URL.Query().Get("parent_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "parent_id 无效")
		return
	}
	subtasks, err := a.engine.Tasks.Subtasks(r.Context(), parentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subtasks": subtasks})
}

func (a *apiServer) scheduleTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID int64  `json:"task_id"`
		Date   string `json:"date"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体格式错误")
		return
	}
	st, err := a.engine.Tasks.Schedule(r.Context(), req.TaskID, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (a *apiServer) startTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScheduledID int64 `json:"scheduled_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体格式错误")
		return
	}
	if err := a.engine.Tasks.Start(r.Context(), req.ScheduledID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *apiServer) completeTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScheduledID int64 `json:"scheduled_id"`
		ActualTime  *int  `json:"actual_time"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体格式错误")
		return
	}
	if err := a.engine.Tasks.Complete(r.Context(), req.ScheduledID, req.ActualTime, time.Now()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// 完成动作顺带做一轮成就判定，前端据此弹通知
	today := time.Now().Format(repository.DateLayout)
	newly, err := a.engine.Achievements.Check(r.Context(), today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if newly == nil {
		newly = []service.AchievementDef{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "newly_unlocked": newly})
}

func (a *apiServer) archiveTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID int64 `json:"task_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体格式错误")
		return
	}
	if err := a.engine.Tasks.Archive(r.Context(), req.TaskID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
