package rule

import "sort"

// Builtin rule catalog. Rules are grouped by the invocation surface they
// inspect: bash commands, file content, file paths, and web requests.

var bashRules = []Rule{
	// P0: destructive operations
	{
		ID:          "bash-rm-rf-root",
		Name:        "Recursive Delete from Root",
		Description: "Detects attempts to recursively delete from root directory or critical system paths",
		Pattern:     `(?i)\brm\s+-rf?\s+[/'"]?(/|\.?\.[/'"]?|/etc|/usr|/bin|/sbin|/var|/boot|/home/[^/]+/\.ssh)`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command would recursively delete critical system directories, which would destroy your operating system.",
		Suggestions: []string{
			"Review the command and ensure you're targeting the correct directory",
			"Use absolute paths to avoid ambiguity",
			"Consider using --preserve-root flag with rm",
		},
		Category: "filesystem",
		Enabled:  true,
	},
	{
		ID:          "bash-dd-overwrite",
		Name:        "Block Device Overwrite",
		Description: "Detects dd commands that would overwrite disk blocks or devices",
		Pattern:     `(?i)\bdd\s+(.*\s)?(of=/dev/(sd[a-z]|nvme|mmcblk)|if=/dev/zero|if=/dev/random)`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command would overwrite a block device or disk, potentially destroying all data.",
		Suggestions: []string{
			"Verify the target device (of=) is correct",
			"Ensure you're not writing to a system disk",
			"Consider using a safer alternative for your use case",
		},
		Category: "filesystem",
		Enabled:  true,
	},
	{
		ID:          "bash-mkfs-filesystem",
		Name:        "Create Filesystem on Device",
		Description: "Detects mkfs commands that would format a block device, destroying all data",
		Pattern:     `(?i)\bmkfs\.(ext[234]|xfs|btrfs|vfat|ntfs)\s+/dev/`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command would create a new filesystem on a block device, destroying all existing data.",
		Suggestions: []string{
			"Verify the target device is correct",
			"Ensure you have backups of any important data",
			"Consider using a live USB/ISO for system-level disk operations",
		},
		Category: "filesystem",
		Enabled:  true,
	},
	{
		ID:          "bash-drop-database",
		Name:        "Drop Database",
		Description: "Detects SQL DROP DATABASE commands",
		Pattern:     "(?i)\\b(drop\\s+database|drop\\s+schema)\\s+[`'\"]?(\\w+)",
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command would permanently delete an entire database and all its data.",
		Suggestions: []string{
			"Verify you're targeting the correct database",
			"Ensure you have a recent backup",
			"Consider using DROP TABLE for specific tables instead",
		},
		Category: "database",
		Enabled:  true,
	},
	{
		ID:          "bash-truncate-table",
		Name:        "Truncate All Tables",
		Description: "Detects SQL TRUNCATE commands that would empty tables",
		Pattern:     "(?i)\\btruncate\\s+(table\\s+)?([`'\"]?(\\w+)[`'\"]?\\s*,?\\s*)+",
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command would delete all data from the specified table(s).",
		Suggestions: []string{
			"Verify you're targeting the correct table(s)",
			"Ensure you have a backup if needed",
			"Consider DELETE with WHERE clause for selective deletion",
		},
		Category: "database",
		Enabled:  true,
	},
	// P1: dangerous operations
	{
		ID:          "bash-chmod-777",
		Name:        "Make Files World-Writable",
		Description: "Detects chmod 777 commands that make files world-writable",
		Pattern:     `(?i)\bchmod\s+(-R\s+)?777\s+`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "Setting permissions to 777 makes files world-writable, which is a security risk.",
		Suggestions: []string{
			"Use more restrictive permissions (e.g., 755 for directories, 644 for files)",
			"Consider using 750 for group-accessible files",
			"Only use 777 for temporary debugging and revert immediately",
		},
		Category: "filesystem",
		Enabled:  true,
	},
	{
		ID:          "bash-chown-system",
		Name:        "Change System File Ownership",
		Description: "Detects chown commands on system directories or files",
		Pattern:     `(?i)\bchown\s+(-R\s+)?\w+\s+/(etc|usr|bin|sbin|var|lib|boot)`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "Changing ownership of system files can break your OS or create security vulnerabilities.",
		Suggestions: []string{
			"Verify you need to change ownership of system files",
			"Consider fixing permissions instead of ownership",
			"Ensure the new owner is appropriate for system files",
		},
		Category: "filesystem",
		Enabled:  true,
	},
	{
		ID:          "bash-kill-process",
		Name:        "Kill Critical Process",
		Description: "Detects attempts to kill critical system processes",
		Pattern:     `(?i)\b(kill|killall|pkill)\s+(-9\s+|-SIGKILL\s+)?(1|systemd|init|ssh|cron|nginx|apache)`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "Killing critical system processes can make your system unresponsive or unusable.",
		Suggestions: []string{
			"Verify the process ID is correct",
			"Try SIGTERM (kill -15) before SIGKILL (kill -9)",
			"Consider using the service's restart command instead",
		},
		Category: "process",
		Enabled:  true,
	},
	{
		ID:          "bash-iptables-flush",
		Name:        "Flush Firewall Rules",
		Description: "Detects iptables commands that flush all firewall rules",
		Pattern:     `(?i)\biptables\s+-F`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "Flushing firewall rules removes all network security protections.",
		Suggestions: []string{
			"Ensure you have a backup of your firewall rules",
			"Consider adding new rules instead of flushing",
			"Have a plan to restore rules immediately after",
		},
		Category: "network",
		Enabled:  true,
	},
	{
		ID:          "bash-sudo-root",
		Name:        "Privilege Escalation to Root",
		Description: "Detects suspicious sudo commands that escalate to root",
		Pattern:     `(?i)\bsudo\s+(su\s+-|/bin/bash|/bin/sh|.*\s&&\s*)`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command escalates to root privileges, which should be used with caution.",
		Suggestions: []string{
			"Use sudo only for specific commands that need it",
			"Avoid interactive shells with sudo",
			"Consider using sudo -u to run as a non-root user",
		},
		Category: "privilege_escalation",
		Enabled:  true,
	},
	// P2: suspicious patterns
	{
		ID:          "bash-curl-data-exfil",
		Name:        "Potential Data Exfiltration",
		Description: "Detects curl commands sending data to external URLs",
		Pattern:     `(?i)\bcurl\s+(-X\s+(POST|PUT)\s+)?(-d\s+|--data-raw\s+|--data-urlencode\s+).+https?://|\bcurl\b.*https?://\S+.*\s(-d|--data-raw|--data-urlencode)\b`,
		PatternType: PatternRegex,
		Severity:    SeverityMedium,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command may be sending data to an external server. Ensure this is intentional.",
		Suggestions: []string{
			"Verify the destination URL is trusted",
			"Review the data being sent for sensitive information",
			"Consider using encryption for sensitive data",
		},
		Category: "data_exfiltration",
		Enabled:  true,
	},
	{
		ID:          "bash-wget-remote-script",
		Name:        "Download and Execute Remote Script",
		Description: "Detects wget/curl followed by pipe to shell",
		Pattern:     `(?i)(curl|wget)\s+.*\s*\|\s*(bash|sh|python|node)`,
		PatternType: PatternRegex,
		Severity:    SeverityMedium,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "Downloading and executing remote scripts without review is dangerous.",
		Suggestions: []string{
			"Download the script first and review its contents",
			"Verify the source is trusted",
			"Consider using a package manager instead",
		},
		Category: "code_injection",
		Enabled:  true,
	},
	{
		ID:          "bash-history-clear",
		Name:        "Clear Command History",
		Description: "Detects attempts to clear bash history",
		Pattern:     `(?i)\b(history\s+-c|rm\s+.*\.bash_history|cat\s+/dev/null\s+>\s+\.bash_history)`,
		PatternType: PatternRegex,
		Severity:    SeverityMedium,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "Clearing command history may hide malicious activity.",
		Suggestions: []string{
			"Avoid clearing history in normal operations",
			"Use audit logging for security-sensitive commands",
			"Consider why history needs to be cleared",
		},
		Category: "audit_evasion",
		Enabled:  true,
	},
	{
		ID:          "bash-package-install-system",
		Name:        "System Package Installation",
		Description: "Detects global package manager installations",
		Pattern:     `(?i)\b(sudo\s+)?(apt|apt-get|yum|dnf|pacman)\s+(install|update)\s+`,
		PatternType: PatternRegex,
		Severity:    SeverityMedium,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "Installing packages at the system level may affect system stability.",
		Suggestions: []string{
			"Use virtual environments when possible",
			"Review the package list before installation",
			"Test packages in a non-production environment first",
		},
		Category: "system_modification",
		Enabled:  true,
	},
	// P2: obfuscation and command chains
	{
		ID:          "bash-base64-decode-exec",
		Name:        "Base64-Encoded Command Execution",
		Description: "Detects base64 decode followed by command execution",
		Pattern:     `(?i)(base64\s+-d|--decode\s+|.*\s*echo\s+.*\s*\|\s*base64\s+-d).*\|\s*(bash|sh|python|php|node|perl)`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command executes base64-encoded content, which may hide malicious code.",
		Suggestions: []string{
			"Decode the base64 content first to verify it",
			"Use clear, readable commands instead",
			"If legitimate, document why this approach is necessary",
		},
		Category: "obfuscation",
		Enabled:  true,
	},
	{
		ID:          "bash-variable-expansion-exec",
		Name:        "Variable Expansion Command Execution",
		Description: "Detects suspicious variable expansion followed by execution",
		Pattern:     `(?i)\$\{?\w+\}?\s*(\||;|&&|\|\|)\s*(bash|sh|eval|exec)|\b(eval|exec)\s+\$\{?\w+\}?`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command uses variable expansion before execution, which may hide malicious intent.",
		Suggestions: []string{
			"Expand variables explicitly to verify the command",
			"Avoid complex variable expansions in shell commands",
			"Use direct commands instead of dynamic construction",
		},
		Category: "obfuscation",
		Enabled:  true,
	},
	{
		ID:          "bash-command-chain-dangerous",
		Name:        "Dangerous Command Chain",
		Description: "Detects chains of commands that could be malicious",
		Pattern:     `(?i)\b(rm\s+-rf?|dd\s+|mkfs|chmod\s+777|> /dev/).*(&&|\||;).*\b(rm|dd|mkfs|chmod|kill|drop|truncate)`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command chains multiple dangerous operations together.",
		Suggestions: []string{
			"Break the command chain into separate steps",
			"Verify each command in the chain is safe",
			"Consider if all operations are necessary",
		},
		Category: "obfuscation",
		Enabled:  true,
	},
	{
		ID:          "bash-xor-decode-exec",
		Name:        "XOR-Encoded Command Execution",
		Description: "Detects XOR or other encoding operations followed by execution",
		Pattern:     `(?i)(perl\s+-e|python\s+-c|awk).*((xor|decode|unpack|chr)\s*\().*\|\s*(bash|sh)`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command uses encoding/decoding operations, which may hide malicious code.",
		Suggestions: []string{
			"Decode the content first to verify it",
			"Use clear, readable commands instead",
			"If legitimate, document why this approach is necessary",
		},
		Category: "obfuscation",
		Enabled:  true,
	},
	{
		ID:          "bash-eval-in-command-chain",
		Name:        "Eval in Command Chain",
		Description: "Detects eval command in command chains",
		Pattern:     `(?i)\beval\s+(\$\{?\w+\}?|\(.+\)|\[.+\]).*(&&|\||;)`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command uses eval in a chain, which can execute arbitrary code.",
		Suggestions: []string{
			"Avoid eval with dynamic content",
			"Use safer alternatives (arrays, functions)",
			"Verify the content being evaluated",
		},
		Category: "code_injection",
		Enabled:  true,
	},
	// P3: informational
	{
		ID:          "bash-deprecated-command",
		Name:        "Deprecated Command Usage",
		Description: "Detects use of deprecated commands",
		Pattern:     `(?i)\b(ftp|telnet|rcp|rlogin|rsh)\s+`,
		PatternType: PatternRegex,
		Severity:    SeverityLow,
		Priority:    PriorityP3,
		ToolTypes:   []ToolType{ToolBash},
		Context:     ContextCommand,
		Message:     "This command is deprecated and may be insecure.",
		Suggestions: []string{
			"Use sftp instead of ftp",
			"Use ssh instead of telnet/rlogin/rsh",
			"Use scp or rsync instead of rcp",
		},
		Category: "deprecation",
		Enabled:  true,
	},
}

var fileContentRules = []Rule{
	// P0: secret exposure
	{
		ID:          "write-api-key-pattern",
		Name:        "API Key in File",
		Description: "Detects potential API keys being written to files",
		Pattern:     `(?i)(api[_-]?key|apikey|access[_-]?token|auth[_-]?token|secret[_-]?key)\s*[=:]\s*['"]?[a-zA-Z0-9_\-\.]{20,}`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFileContent,
		Message:     "This file appears to contain an API key or access token. Secrets should not be committed to version control.",
		Suggestions: []string{
			"Use environment variables for secrets",
			"Add this file to .gitignore if it contains secrets",
			"Rotate the key if it was accidentally exposed",
		},
		Category: "secret_exposure",
		Enabled:  true,
	},
	{
		ID:          "write-aws-key-pattern",
		Name:        "AWS Access Key in File",
		Description: "Detects AWS access keys being written to files",
		Pattern:     `(?i)aws_access_key_id\s*[=:]\s*['"]?(AKIA[0-9A-Z]{16})`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFileContent,
		Message:     "This file contains an AWS access key ID. AWS credentials should never be in files.",
		Suggestions: []string{
			"Use AWS IAM roles or environment variables",
			"Add this file to .gitignore",
			"Rotate the AWS access key immediately",
		},
		Category: "secret_exposure",
		Enabled:  true,
	},
	{
		ID:          "write-private-key-pattern",
		Name:        "Private Key in File",
		Description: "Detects SSH private keys or certificates being written to files",
		Pattern:     `-----BEGIN\s+(RSA\s+)?PRIVATE\s+KEY-----`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFileContent,
		Message:     "This file contains a private key. Private keys should never be committed to version control.",
		Suggestions: []string{
			"Add this file to .gitignore immediately",
			"Rotate the key if it was exposed",
			"Ensure file permissions are 600 (owner read/write only)",
		},
		Category: "secret_exposure",
		Enabled:  true,
	},
	{
		ID:          "write-password-pattern",
		Name:        "Password in File",
		Description: "Detects hardcoded passwords in files",
		Pattern:     `(?i)(password|passwd|pwd)\s*[=:]\s*['"]?[^\s'"]{8,}`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFileContent,
		Message:     "This file appears to contain a hardcoded password. Passwords should not be stored in files.",
		Suggestions: []string{
			"Use environment variables for passwords",
			"Use a secure credential store",
			"Add this file to .gitignore",
		},
		Category: "secret_exposure",
		Enabled:  true,
	},
	// P1: malware indicators
	{
		ID:          "write-eval-exec-pattern",
		Name:        "Dynamic Code Execution",
		Description: "Detects eval/exec patterns that may indicate malicious code",
		Pattern:     `(?i)(?:^|\s|\W)(?:(?:eval|exec|__import__|compile)\s*\()`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFileContent,
		Message:     "This file contains dynamic code execution patterns, which can be dangerous if used with untrusted input.",
		Suggestions: []string{
			"Avoid eval/exec with user input",
			"Sanitize and validate all input before dynamic execution",
			"Consider if there's a safer way to achieve the same goal",
		},
		Category: "code_injection",
		Enabled:  true,
	},
	{
		ID:          "write-base64-decode-exec",
		Name:        "Base64-Encoded Code Execution",
		Description: "Detects base64 decode followed by execution",
		Pattern:     `(?i)(?:base64\s+-d|decode).*\|\s*(bash|python|node|php)`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFileContent,
		Message:     "This file contains base64-encoded code execution, which is often used to hide malicious code.",
		Suggestions: []string{
			"Avoid encoded execution in scripts",
			"Use clear, readable code instead",
			"If this is legitimate, document why this approach is necessary",
		},
		Category: "obfuscation",
		Enabled:  true,
	},
	{
		ID:          "write-reverse-shell",
		Name:        "Reverse Shell Pattern",
		Description: "Detects reverse shell patterns",
		Pattern:     `(?i)(?:bash\s+-i\s+>&\s*/dev/tcp/|nc\s+.*\s+-e\s+|/bin/sh\s+-i)`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFileContent,
		Message:     "This file contains a reverse shell pattern, which is typically used for unauthorized remote access.",
		Suggestions: []string{
			"If this is intentional for remote administration, document the purpose",
			"Use proper remote access tools (SSH, VPN) instead",
			"Ensure adequate authentication and logging",
		},
		Category: "backdoor",
		Enabled:  true,
	},
	// P2: suspicious content
	{
		ID:          "write-crypto-miner",
		Name:        "Cryptocurrency Miner Pattern",
		Description: "Detects common cryptocurrency mining patterns",
		Pattern:     `(?i)(crypto?mining?|miner|xmrig|cpuminer|monero|bitcoin.*mine|stratum\+tcp://)`,
		PatternType: PatternRegex,
		Severity:    SeverityMedium,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFileContent,
		Message:     "This file may contain cryptocurrency mining code.",
		Suggestions: []string{
			"Ensure mining is authorized on this system",
			"Mining can consume significant CPU resources",
			"Check system resource usage policies",
		},
		Category: "resource_abuse",
		Enabled:  true,
	},
	{
		ID:          "write-coinhive",
		Name:        "CoinHive or Similar In-Browser Miner",
		Description: "Detects in-browser cryptocurrency mining scripts",
		Pattern:     `(?i)(coinhive|jsecoin|cryptoloot|crypto-loot|minergate)`,
		PatternType: PatternRegex,
		Severity:    SeverityMedium,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFileContent,
		Message:     "This file contains an in-browser mining script, which can degrade user experience.",
		Suggestions: []string{
			"Obtain user consent before running mining scripts",
			"Consider alternative monetization strategies",
			"Mining without consent is considered malware",
		},
		Category: "resource_abuse",
		Enabled:  true,
	},
}

var filePathRules = []Rule{
	// P0: system files
	{
		ID:          "path-system-directory-write",
		Name:        "Write to System Directory",
		Description: "Detects writes to critical system directories",
		Pattern:     `^/(etc|usr|bin|sbin|lib|boot|sys|proc)/`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to system directories can break your operating system.",
		Suggestions: []string{
			"Use /usr/local for custom installations",
			"Use package managers (apt, yum, etc.) for system software",
			"Write to user directories instead",
		},
		Category: "system_files",
		Enabled:  true,
	},
	{
		ID:          "path-etc-passwd",
		Name:        "Write to /etc/passwd",
		Description: "Detects writes to the system password file",
		Pattern:     `^/etc/passwd$`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to /etc/passwd can compromise system security and break authentication.",
		Suggestions: []string{
			"Use 'useradd' and 'usermod' commands instead",
			"Never manually edit /etc/passwd unless absolutely necessary",
			"Backup the file before making changes",
		},
		Category: "system_files",
		Enabled:  true,
	},
	{
		ID:          "path-etc-shadow",
		Name:        "Write to /etc/shadow",
		Description: "Detects writes to the system shadow password file",
		Pattern:     `^/etc/shadow$`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to /etc/shadow exposes password hashes and breaks authentication.",
		Suggestions: []string{
			"Use 'passwd' command to change passwords",
			"Never manually edit /etc/shadow",
			"Ensure proper file permissions (600 root:root)",
		},
		Category: "system_files",
		Enabled:  true,
	},
	{
		ID:          "path-ssh-authorized-keys",
		Name:        "Write to SSH Authorized Keys",
		Description: "Detects writes to SSH authorized_keys files",
		Pattern:     `^/home/[^/]+/\.ssh/authorized_keys$|^/root/\.ssh/authorized_keys$`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to SSH authorized_keys can grant unauthorized access.",
		Suggestions: []string{
			"Use 'ssh-copy-id' to add keys safely",
			"Review the key before adding it",
			"Ensure proper file permissions (600)",
		},
		Category: "access_control",
		Enabled:  true,
	},
	{
		ID:          "path-sudoers",
		Name:        "Write to Sudoers File",
		Description: "Detects writes to sudoers configuration",
		Pattern:     `^/etc/sudoers(|\.d/[^\s]+)$`,
		PatternType: PatternRegex,
		Severity:    SeverityCritical,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to sudoers can grant unrestricted root access and break system security.",
		Suggestions: []string{
			"Use 'visudo' command to edit sudoers safely",
			"Never manually edit /etc/sudoers",
			"Test sudoers configuration with 'visudo -c'",
		},
		Category: "access_control",
		Enabled:  true,
	},
	{
		ID:          "path-crontab",
		Name:        "Write to System Crontab",
		Description: "Detects writes to system cron configuration",
		Pattern:     `^/etc/crontab$|^/etc/cron\.(d|daily|hourly|monthly|weekly)/`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP0,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to system cron files can schedule malicious tasks.",
		Suggestions: []string{
			"Use user crontabs (crontab -e) instead of system crontab",
			"Review scheduled tasks carefully",
			"Test cron jobs in a non-production environment first",
		},
		Category: "system_files",
		Enabled:  true,
	},
	// P1: security-sensitive files
	{
		ID:          "path-ssh-config",
		Name:        "Write to SSH Config",
		Description: "Detects writes to SSH configuration files",
		Pattern:     `/\.ssh/config$|/\.ssh/known_hosts$`,
		PatternType: PatternRegex,
		Severity:    SeverityMedium,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to SSH configuration files can affect security and connectivity.",
		Suggestions: []string{
			"Review SSH configuration changes carefully",
			"Test SSH connections after changes",
			"Backup original config before modifying",
		},
		Category: "access_control",
		Enabled:  true,
	},
	{
		ID:          "path-environment-file",
		Name:        "Write to .env File",
		Description: "Detects writes to environment files (may contain secrets)",
		Pattern:     `/\.env$|/\.env\.`,
		PatternType: PatternRegex,
		Severity:    SeverityMedium,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to .env files may expose secrets if committed to version control.",
		Suggestions: []string{
			"Add .env files to .gitignore",
			"Use .env.example for template (without real values)",
			"Review file for secrets before writing",
		},
		Category: "secret_exposure",
		Enabled:  true,
	},
	{
		ID:          "path-hosts-file",
		Name:        "Write to /etc/hosts",
		Description: "Detects writes to the system hosts file",
		Pattern:     `^/etc/hosts$`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to /etc/hosts can redirect traffic and break network functionality.",
		Suggestions: []string{
			"Backup the file before editing",
			"Test DNS resolution after changes",
			"Document the reason for each entry",
		},
		Category: "network",
		Enabled:  true,
	},
	// P2: other users' directories
	{
		ID:          "path-other-user-home",
		Name:        "Write to Another User's Home Directory",
		Description: "Detects writes to directories owned by other users",
		Pattern:     `^/home/[^/]+/`,
		PatternType: PatternRegex,
		Severity:    SeverityMedium,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to another user's home directory may violate privacy or permissions.",
		Suggestions: []string{
			"Verify you have permission to write to this directory",
			"Write to your own home directory instead",
			"Use shared directories (e.g., /tmp, /var/tmp) for temporary files",
		},
		Category: "access_control",
		Enabled:  true,
	},
	{
		ID:          "path-systemd-unit",
		Name:        "Write to Systemd Unit File",
		Description: "Detects writes to systemd service unit files",
		Pattern:     `^/etc/systemd/system/.*\.service$|^/lib/systemd/system/.*\.service$`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolWrite, ToolEdit},
		Context:     ContextFilePath,
		Message:     "Writing to systemd unit files affects system services and startup behavior.",
		Suggestions: []string{
			"Test unit files in ~/.config/systemd/user/ first",
			"Use 'systemctl daemon-reload' after changes",
			"Review unit file syntax with 'systemd-analyze verify'",
		},
		Category: "system_files",
		Enabled:  true,
	},
}

var webRules = []Rule{
	{
		ID:          "web-fetch-internal-ip",
		Name:        "Access Internal Network Resource",
		Description: "Detects web fetch requests to internal IP addresses",
		Pattern:     `(?i)https?://(127\.|10\.|172\.(1[6-9]|2[0-9]|3[01])\.|192\.168\.)`,
		PatternType: PatternRegex,
		Severity:    SeverityMedium,
		Priority:    PriorityP2,
		ToolTypes:   []ToolType{ToolWebFetch, ToolWebSearch},
		Context:     ContextAll,
		Message:     "This request targets an internal IP address, which may indicate SSRF or internal network access.",
		Suggestions: []string{
			"Verify the URL is correct and intentional",
			"Ensure access to internal resources is authorized",
			"Consider if there's a safer way to access the resource",
		},
		Category: "network_security",
		Enabled:  true,
	},
	{
		ID:          "web-fetch-local-file",
		Name:        "Local File Inclusion Attempt",
		Description: "Detects web fetch requests to local files (file://)",
		Pattern:     `(?i)file://`,
		PatternType: PatternRegex,
		Severity:    SeverityHigh,
		Priority:    PriorityP1,
		ToolTypes:   []ToolType{ToolWebFetch, ToolWebSearch},
		Context:     ContextAll,
		Message:     "This request uses the file:// protocol, which may indicate local file inclusion.",
		Suggestions: []string{
			"Use the Read tool instead for local files",
			"Verify the file path is correct",
			"Be cautious with sensitive file access",
		},
		Category: "file_access",
		Enabled:  true,
	},
}

// DefaultRules returns a fresh copy of the builtin catalog. Callers may
// mutate the returned rules without affecting subsequent calls.
func DefaultRules() []*Rule {
	groups := [][]Rule{bashRules, fileContentRules, filePathRules, webRules}
	var out []*Rule
	for _, group := range groups {
		for i := range group {
			out = append(out, group[i].Clone())
		}
	}
	return out
}

// DefaultRuleByID looks up a builtin rule by id, returning nil when absent.
func DefaultRuleByID(id string) *Rule {
	for _, r := range DefaultRules() {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// DefaultRuleIDs returns the sorted ids of the builtin catalog.
func DefaultRuleIDs() []string {
	rules := DefaultRules()
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.ID)
	}
	sort.Strings(out)
	return out
}

// Categories returns the sorted set of categories in the builtin catalog.
func Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range DefaultRules() {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	sort.Strings(out)
	return out
}
