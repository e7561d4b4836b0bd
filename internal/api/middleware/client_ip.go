package middleware

import (
	"net"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/logger"
)

// ClientIPExtractor は c.RealIP() が使うクライアントIPの取り出し方を返す。
// 信頼するプロキシがなければ転送ヘッダーを無視して接続元IPを使い、
// あればそのプロキシを経由した X-Forwarded-For だけを辿る。解釈できない要素は無視する
func ClientIPExtractor(trustedProxies []string) echo.IPExtractor {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect()
	}

	// ループバックやプライベート網も明示したものだけを信頼する
	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, proxy := range trustedProxies {
		ipNet, err := parseProxy(proxy)
		if err != nil {
			logger.Warn("信頼するプロキシを解釈できません", zap.String("proxy", proxy), zap.Error(err))
			continue
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(options...)
}

// parseProxy は単一のIPを /32（IPv6 は /128）として扱う
func parseProxy(proxy string) (*net.IPNet, error) {
	if strings.Contains(proxy, "/") {
		_, ipNet, err := net.ParseCIDR(proxy)
		return ipNet, err
	}
	ip := net.ParseIP(proxy)
	if ip == nil {
		return nil, &net.ParseError{Type: "IP address", Text: proxy}
	}
	bits := 8 * net.IPv6len
	if v4 := ip.To4(); v4 != nil {
		ip, bits = v4, 8*net.IPv4len
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}
