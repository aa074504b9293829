package ui

import "github.com/charmbracelet/lipgloss"

// Category groups syscalls for coloring.
type Category uint8

const (
	CatOther Category = iota
	CatFileIO
	CatProcess
	CatMemory
	CatNetwork
	CatFilesystem
	CatTime
	CatSignal
	CatSecurity
	CatPolling
	CatResource
)

var categoryOf = map[string]Category{}

func init() {
	groups := map[Category][]string{
		CatFileIO: {"read", "write", "pread", "pwrite", "pread64", "pwrite64", "readv", "writev",
			"preadv", "pwritev", "open", "openat", "openat2", "creat", "close", "dup", "dup2", "dup3",
			"lseek", "llseek", "_llseek", "fcntl", "ioctl", "fstat", "stat", "lstat", "fstatat",
			"newfstatat", "statx", "ftruncate", "truncate", "fsync", "fdatasync", "sync", "syncfs",
			"access", "faccessat", "faccessat2"},
		CatProcess: {"fork", "vfork", "clone", "clone3", "execve", "execveat", "exit", "exit_group",
			"wait4", "waitid", "waitpid", "kill", "tkill", "tgkill", "getpid", "gettid", "getppid",
			"getpgid", "getsid", "setpgid", "setsid", "ptrace", "prctl"},
		CatMemory: {"mmap", "mmap2", "munmap", "mremap", "msync", "mprotect", "madvise", "mlock",
			"mlock2", "munlock", "mlockall", "munlockall", "brk", "sbrk", "memfd_create",
			"userfaultfd", "remap_file_pages"},
		CatNetwork: {"socket", "bind", "listen", "accept", "accept4", "connect", "send", "sendto",
			"sendmsg", "sendmmsg", "recv", "recvfrom", "recvmsg", "recvmmsg", "shutdown",
			"getsockopt", "setsockopt", "pipe", "pipe2", "socketpair", "getpeername", "getsockname"},
		CatFilesystem: {"mkdir", "mkdirat", "rmdir", "unlink", "unlinkat", "rename", "renameat",
			"renameat2", "link", "linkat", "symlink", "symlinkat", "readlink", "readlinkat", "chmod",
			"fchmod", "fchmodat", "chown", "fchown", "lchown", "fchownat", "chdir", "fchdir", "getcwd",
			"mount", "umount", "umount2", "chroot", "pivot_root", "getdents", "getdents64", "statfs",
			"fstatfs"},
		CatTime: {"gettimeofday", "settimeofday", "clock_gettime", "clock_settime", "clock_getres",
			"clock_nanosleep", "time", "stime", "nanosleep", "timer_create", "timer_settime",
			"timer_gettime", "timer_delete", "timer_getoverrun", "alarm", "setitimer", "getitimer"},
		CatSignal: {"signal", "sigaction", "sigreturn", "rt_sigaction", "rt_sigreturn", "sigprocmask",
			"rt_sigprocmask", "sigpending", "rt_sigpending", "sigsuspend", "rt_sigsuspend",
			"signalfd", "signalfd4"},
		CatSecurity: {"setuid", "setgid", "setreuid", "setregid", "setresuid", "setresgid", "getuid",
			"getgid", "geteuid", "getegid", "capget", "capset", "setgroups", "getgroups", "seccomp",
			"keyctl", "add_key", "request_key"},
		CatPolling: {"select", "pselect6", "poll", "ppoll", "epoll_create", "epoll_create1",
			"epoll_ctl", "epoll_wait", "epoll_pwait", "inotify_init", "inotify_init1",
			"inotify_add_watch", "inotify_rm_watch", "eventfd", "eventfd2", "timerfd_create",
			"timerfd_settime", "timerfd_gettime"},
		CatResource: {"getrlimit", "setrlimit", "prlimit64", "getrusage", "getpriority", "setpriority",
			"nice", "sched_setscheduler", "sched_getscheduler", "sched_setparam", "sched_getparam",
			"sched_setaffinity", "sched_getaffinity", "sched_yield"},
	}
	for cat, names := range groups {
		for _, n := range names {
			categoryOf[n] = cat
		}
	}
}

// CategoryOf classifies a syscall name; unknown names are CatOther.
func CategoryOf(name string) Category {
	return categoryOf[name]
}

func (c Category) Color() lipgloss.Color {
	switch c {
	case CatFileIO:
		return lipgloss.Color("4")
	case CatProcess:
		return lipgloss.Color("5")
	case CatMemory:
		return lipgloss.Color("6")
	case CatNetwork:
		return lipgloss.Color("2")
	case CatFilesystem:
		return lipgloss.Color("3")
	case CatTime:
		return lipgloss.Color("12")
	case CatSignal:
		return lipgloss.Color("9")
	case CatSecurity:
		return lipgloss.Color("13")
	case CatPolling:
		return lipgloss.Color("10")
	case CatResource:
		return lipgloss.Color("11")
	default:
		return lipgloss.Color("7")
	}
}

// lane colors for processes, assigned in order of first appearance
var laneColors = []lipgloss.Color{"4", "2", "3", "5", "6", "12", "10", "13"}

// processLanes assigns each pid a color. Single-process traces get none.
func processLanes(pids []int) map[int]lipgloss.Color {
	if len(pids) < 2 {
		return nil
	}
	out := make(map[int]lipgloss.Color, len(pids))
	for i, pid := range pids {
		out[pid] = laneColors[i%len(laneColors)]
	}
	return out
}
