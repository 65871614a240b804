package mcping

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// resolvedTarget is the concrete (ip, port) a caller should dial,
// independent of address family.
type resolvedTarget struct {
	IP   netip.Addr
	Port uint16
}

// splitHostPort applies spec §4.2 step 1: split on the first colon, parse
// the right side as a base-10 uint16 port, fall back to defaultPort when
// there is no colon.
func splitHostPort(rawHostPort string, defaultPort uint16) (host string, port uint16, err error) {
	idx := strings.IndexByte(rawHostPort, ':')
	if idx < 0 {
		if rawHostPort == "" {
			return "", 0, invalidAddressf("empty address")
		}
		return rawHostPort, defaultPort, nil
	}
	host = rawHostPort[:idx]
	portStr := rawHostPort[idx+1:]
	if host == "" || portStr == "" {
		return "", 0, invalidAddressf("malformed address %q", rawHostPort)
	}
	p, convErr := strconv.ParseUint(portStr, 10, 16)
	if convErr != nil {
		return "", 0, invalidAddressf("invalid port in %q: %v", rawHostPort, convErr)
	}
	return host, uint16(p), nil
}

// lookupHostIPFunc resolves host to a single IP via the system resolver,
// returning the first A/AAAA result regardless of family. It is a
// package-level hook (rather than a hard-coded net.DefaultResolver call)
// so tests can substitute a stub resolver for the SRV-override scenario
// in spec §8.
var lookupHostIPFunc = func(ctx context.Context, host string) (netip.Addr, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return netip.Addr{}, dnsLookupFailed("lookup host "+host, err)
	}
	if len(addrs) == 0 {
		return netip.Addr{}, dnsLookupFailed("no addresses for host "+host, nil)
	}
	addr, ok := netip.AddrFromSlice(addrs[0].IP)
	if !ok {
		return netip.Addr{}, dnsLookupFailed("unparseable resolver address for host "+host, nil)
	}
	return addr, nil
}

func lookupHostIP(ctx context.Context, host string) (netip.Addr, error) {
	if addr, perr := netip.ParseAddr(strings.Trim(host, "[]")); perr == nil {
		return addr, nil
	}
	return lookupHostIPFunc(ctx, host)
}

// srvRecord is the subset of *net.SRV this package consumes.
type srvRecord struct {
	Target string
	Port   uint16
}

// lookupJavaSRVFunc resolves the SRV records for "_minecraft._tcp.<host>.".
// A package-level hook for the same reason as lookupHostIPFunc.
var lookupJavaSRVFunc = func(ctx context.Context, host string) ([]srvRecord, error) {
	_, records, err := net.DefaultResolver.LookupSRV(ctx, "minecraft", "tcp", host)
	if err != nil {
		return nil, err
	}
	out := make([]srvRecord, 0, len(records))
	for _, r := range records {
		out = append(out, srvRecord{Target: r.Target, Port: r.Port})
	}
	return out, nil
}

// lookupJavaSRV resolves the deterministic first SRV record for
// "_minecraft._tcp.<host>." and recursively resolves its target to an IP.
// Priority/weight are not consulted, matching spec §4.2 step 2.
func lookupJavaSRV(ctx context.Context, host string) (resolvedTarget, error) {
	records, err := lookupJavaSRVFunc(ctx, host)
	if err != nil {
		return resolvedTarget{}, dnsLookupFailed("srv lookup for "+host, err)
	}
	if len(records) == 0 {
		return resolvedTarget{}, dnsLookupFailed("no srv records for "+host, nil)
	}
	target := strings.TrimSuffix(records[0].Target, ".")
	ip, err := lookupHostIP(ctx, target)
	if err != nil {
		return resolvedTarget{}, err
	}
	return resolvedTarget{IP: ip, Port: records[0].Port}, nil
}

// resolveJavaAddress implements spec §4.2 in full for the Java edition:
// split host:port, attempt SRV unless disableSRV is set, fall back to a
// direct A/AAAA lookup.
func resolveJavaAddress(ctx context.Context, rawHostPort string, defaultPort uint16, disableSRV bool) (host string, target resolvedTarget, err error) {
	host, port, err := splitHostPort(rawHostPort, defaultPort)
	if err != nil {
		return "", resolvedTarget{}, err
	}

	if !disableSRV {
		if srv, srvErr := lookupJavaSRV(ctx, host); srvErr == nil {
			return host, srv, nil
		}
	}

	ip, err := lookupHostIP(ctx, host)
	if err != nil {
		return "", resolvedTarget{}, err
	}
	return host, resolvedTarget{IP: ip, Port: port}, nil
}

// resolveBedrockAddress implements spec §4.2 step 3 for Bedrock: no SRV,
// direct A/AAAA lookup with the port carried from step 1.
func resolveBedrockAddress(ctx context.Context, rawHostPort string, defaultPort uint16) (target resolvedTarget, err error) {
	host, port, err := splitHostPort(rawHostPort, defaultPort)
	if err != nil {
		return resolvedTarget{}, err
	}
	ip, err := lookupHostIP(ctx, host)
	if err != nil {
		return resolvedTarget{}, err
	}
	return resolvedTarget{IP: ip, Port: port}, nil
}
