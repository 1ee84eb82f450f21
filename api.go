package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var hundred = decimal.NewFromInt(100)

// ============================================================================
// 行情源构建入口
// ============================================================================

// newQuoteSource 根据配置组装行情源：东方财富 -> (腾讯兜底) -> 短时缓存
func newQuoteSource(cfg QuotesConfig) QuoteSource {
	client := &http.Client{}
	var source QuoteSource = &EastMoneySource{
		BaseURL: cfg.EastMoneyURL,
		Client:  client,
		Timeout: cfg.Timeout,
		Retries: cfg.Retries,
	}
	if cfg.Fallback {
		source = &fallbackSource{sources: []QuoteSource{source, &TencentSource{
			BaseURL: cfg.TencentURL,
			Client:  client,
			Timeout: cfg.Timeout,
			Retries: cfg.Retries,
		}}}
	}
	if cfg.CacheTTL > 0 {
		source = newCachedSource(source, cfg.CacheTTL)
	}
	return source
}

// ============================================================================
// 东方财富 API
// ============================================================================

// EastMoneySource 东方财富批量行情接口 /api/qt/ulist.np/get
type EastMoneySource struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
	Retries int
}

// emNumber 东方财富数值字段；停牌时返回 "-"
type emNumber struct {
	value int64
	ok    bool
}

func (n *emNumber) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`"-"`)) || bytes.Equal(data, []byte("null")) {
		*n = emNumber{}
		return nil
	}
	v, err := strconv.ParseInt(strings.Trim(string(data), `"`), 10, 64)
	if err != nil {
		// 部分字段偶尔以浮点形式返回，按 0 处理
		*n = emNumber{}
		return nil
	}
	*n = emNumber{value: v, ok: true}
	return nil
}

// emStock 东方财富单条记录
type emStock struct {
	Precision emNumber `json:"f1"`  // 小数位数
	Price     emNumber `json:"f2"`  // 现价
	Change    emNumber `json:"f4"`  // 涨跌额
	Code      string   `json:"f12"` // 股票代码
	Name      string   `json:"f14"` // 股票名称
	PrevClose emNumber `json:"f18"` // 昨收
}

func (s *EastMoneySource) FetchQuotes(ctx context.Context, market Market, codes []string) []Quote {
	if len(codes) == 0 {
		return nil
	}

	secids := make([]string, 0, len(codes))
	for _, code := range codes {
		secids = append(secids, market.SecIDPrefix()+"."+code)
	}
	url := fmt.Sprintf("%s/api/qt/ulist.np/get?fltt=1&fields=f1,f2,f4,f12,f14,f18&secids=%s",
		strings.TrimRight(s.BaseURL, "/"), strings.Join(secids, ","))
	logDebug("log.quote.request", "eastmoney", market, url)

	body, err := fetchBody(ctx, s.Client, url, s.Timeout, s.Retries, "https://quote.eastmoney.com/")
	if err != nil {
		logWarn("log.quote.fetchFail", "eastmoney", market, err)
		return nil
	}

	stocks, err := parseEastMoneyList(body)
	if err != nil {
		logWarn("log.quote.parseFail", "eastmoney", market, err)
		return nil
	}

	quotes := make([]Quote, 0, len(stocks))
	for _, st := range stocks {
		quotes = append(quotes, st.toQuote(market))
	}
	logDebug("log.quote.success", "eastmoney", market, len(quotes), len(codes))
	return quotes
}

// parseEastMoneyList 解析 data.diff，兼容数组和以下标为键的对象两种格式
func parseEastMoneyList(body []byte) ([]emStock, error) {
	var resp struct {
		Data *struct {
			Diff json.RawMessage `json:"diff"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode eastmoney response: %w", err)
	}
	// data 为 null 表示没有任何匹配
	if resp.Data == nil || len(resp.Data.Diff) == 0 {
		return nil, nil
	}

	var list []emStock
	if err := json.Unmarshal(resp.Data.Diff, &list); err == nil {
		return list, nil
	}

	var indexed map[string]emStock
	if err := json.Unmarshal(resp.Data.Diff, &indexed); err != nil {
		return nil, fmt.Errorf("decode eastmoney diff: %w", err)
	}
	list = make([]emStock, 0, len(indexed))
	for i := 0; i < len(indexed); i++ {
		if st, ok := indexed[strconv.Itoa(i)]; ok {
			list = append(list, st)
		}
	}
	return list, nil
}

func (st emStock) toQuote(market Market) Quote {
	exp := int32(-2)
	if st.Precision.ok {
		exp = -int32(st.Precision.value)
	}
	q := Quote{
		Market:    market,
		Code:      st.Code,
		Name:      st.Name,
		Price:     decimal.New(st.Price.value, exp),
		Change:    decimal.New(st.Change.value, exp),
		PrevClose: decimal.New(st.PrevClose.value, exp),
	}
	q.ChangePercent = percentOf(q.Change, q.PrevClose)
	return q
}

// percentOf 涨跌幅 = 涨跌额 * 100 / 昨收，保留两位
func percentOf(change, prevClose decimal.Decimal) decimal.Decimal {
	if prevClose.IsZero() {
		return decimal.Zero
	}
	return change.Mul(hundred).Div(prevClose).Round(2)
}

// ============================================================================
// 腾讯 API
// ============================================================================

// TencentSource 腾讯行情接口 qt.gtimg.cn，返回 GBK 编码文本
type TencentSource struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
	Retries int
}

func (s *TencentSource) FetchQuotes(ctx context.Context, market Market, codes []string) []Quote {
	if len(codes) == 0 {
		return nil
	}

	symbols := make([]string, 0, len(codes))
	for _, code := range codes {
		symbols = append(symbols, string(market)+code)
	}
	url := fmt.Sprintf("%s/q=%s", strings.TrimRight(s.BaseURL, "/"), strings.Join(symbols, ","))
	logDebug("log.quote.request", "tencent", market, url)

	body, err := fetchBody(ctx, s.Client, url, s.Timeout, s.Retries, "https://stockapp.finance.qq.com/")
	if err != nil {
		logWarn("log.quote.fetchFail", "tencent", market, err)
		return nil
	}

	content, err := gbkToUtf8(body)
	if err != nil {
		logWarn("log.quote.decodeFail", "tencent", err)
		content = string(body)
	}

	quotes := parseTencentQuotes(content, market)
	logDebug("log.quote.success", "tencent", market, len(quotes), len(codes))
	return quotes
}

// parseTencentQuotes 解析形如 v_sh600519="1~贵州茅台~600519~1725.00~1737.00~...";
// 字段：[1]名称 [2]代码 [3]现价 [4]昨收 [31]涨跌额 [32]涨跌幅
func parseTencentQuotes(content string, market Market) []Quote {
	var quotes []Quote
	for _, line := range strings.Split(content, ";") {
		line = strings.TrimSpace(line)
		start := strings.Index(line, `="`)
		if !strings.HasPrefix(line, "v_") || start == -1 {
			continue
		}
		// v_pv_none_match="1" 之类表示代码不存在
		if !strings.HasPrefix(line[2:start], string(market)) {
			continue
		}

		payload := strings.TrimSuffix(line[start+2:], `"`)
		fields := strings.Split(payload, "~")
		if len(fields) < 5 {
			continue
		}

		price, err := decimal.NewFromString(fields[3])
		if err != nil {
			continue
		}
		prevClose, _ := decimal.NewFromString(fields[4])

		q := Quote{
			Market:    market,
			Code:      fields[2],
			Name:      fields[1],
			Price:     price,
			PrevClose: prevClose,
			Change:    price.Sub(prevClose),
		}
		if len(fields) > 32 {
			if change, err := decimal.NewFromString(fields[31]); err == nil {
				q.Change = change
			}
		}
		q.ChangePercent = percentOf(q.Change, q.PrevClose)
		if len(fields) > 32 {
			if pct, err := decimal.NewFromString(fields[32]); err == nil {
				q.ChangePercent = pct
			}
		}
		quotes = append(quotes, q)
	}
	return quotes
}

// ============================================================================
// 多数据源降级
// ============================================================================

// fallbackSource 依次询问各数据源，前一个缺失的代码交给下一个
type fallbackSource struct {
	sources []QuoteSource
}

func (f *fallbackSource) FetchQuotes(ctx context.Context, market Market, codes []string) []Quote {
	var result []Quote
	missing := codes
	for i, source := range f.sources {
		if len(missing) == 0 {
			break
		}
		if i > 0 {
			logInfo("log.quote.fallback", market, len(missing))
		}

		found := make(map[string]bool)
		for _, q := range source.FetchQuotes(ctx, market, missing) {
			if found[q.Code] {
				continue
			}
			found[q.Code] = true
			result = append(result, q)
		}

		var next []string
		for _, code := range missing {
			if !found[code] {
				next = append(next, code)
			}
		}
		missing = next
	}
	return result
}

// ============================================================================
// HTTP 辅助函数
// ============================================================================

// fetchBody 发起带超时和重试的 GET 请求并读取完整响应体
func fetchBody(ctx context.Context, client *http.Client, url string, timeout time.Duration, retries int, referer string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = defaultQuoteTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)

	resp, err := fetchWithRetry(client, req, retries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// fetchWithRetry performs HTTP request with retry mechanism
func fetchWithRetry(client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		resp, err := client.Do(req.Clone(req.Context()))
		if err == nil && resp.StatusCode == http.StatusOK {
			return resp, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("HTTP status %d", resp.StatusCode)
			resp.Body.Close()
		}
		if i == maxRetries-1 {
			break
		}
		// 300ms, 600ms, ... 或上下文结束
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(time.Duration(i+1) * 300 * time.Millisecond):
		}
	}
	return nil, lastErr
}

// gbkToUtf8 将GBK编码转换为UTF-8
func gbkToUtf8(data []byte) (string, error) {
	reader := transform.NewReader(bytes.NewReader(data), simplifiedchinese.GBK.NewDecoder())
	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(utf8Data), nil
}
